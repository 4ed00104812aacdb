package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var (
		driveType string
		password  string
	)

	cmd := &cobra.Command{
		Use:   "ingest <share-url>",
		Short: "同步提交并解析一个分享链接",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			share, err := svc.GetIngestService().IngestShare(cmd.Context(), entities.ShareRequest{
				DriveType: driveType,
				ShareURL:  args[0],
				Password:  password,
			})
			if err != nil {
				return err
			}

			rows := [][]string{
				{"ID", strconv.FormatInt(share.ID, 10)},
				{"URL", share.ShareURL},
				{"Title", orDash(share.CleanTitle)},
				{"Type", orDash(string(share.Kind))},
				{"Year", optionalInt(share.Year)},
				{"Season", optionalInt(share.SeasonNumber)},
				{"Files", strconv.Itoa(share.FileCount)},
				{"Parsed", yesNo(share.IsParsed())},
				{"Poster", orDash(share.PosterURL)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&driveType, "drive", "tianyi", "网盘类型")
	cmd.Flags().StringVarP(&password, "password", "p", "", "访问码，留空时从链接文本中提取")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
