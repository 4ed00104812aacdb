package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aijiaobin/video-api/internal/domain/services/classifier"
)

func intOrDash(v int) string {
	if v == 0 {
		return "-"
	}
	return strconv.Itoa(v)
}

// newClassifyCommand 离线查看标题清洗和文件名解析结果
func newClassifyCommand() *cobra.Command {
	var files bool

	cmd := &cobra.Command{
		Use:         "classify <name>...",
		Short:       "离线解析分享标题或文件名",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if files {
				rows := make([][]string, 0, len(args))
				for _, name := range args {
					info := classifier.ParseFileName(name)
					rows = append(rows, []string{
						name, info.CleanName, string(info.ContentType),
						optionalInt(info.SeasonNumber), optionalInt(info.EpisodeNumber),
						orDash(info.Resolution), orDash(info.VideoCodec), orDash(info.AudioCodec),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"File", "Clean", "Type", "Season", "Episode", "Res", "Video", "Audio"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			}

			rows := make([][]string, 0, len(args))
			for _, raw := range args {
				info := classifier.CleanTitle(raw)
				rows = append(rows, []string{
					raw, info.CleanTitle, string(info.Kind),
					intOrDash(info.Year), intOrDash(info.SeasonNumber),
					orDash(info.Resolution), intOrDash(info.TMDBID),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Raw", "Clean", "Type", "Year", "Season", "Res", "TMDB"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&files, "files", "f", false, "按文件名解析")
	return cmd
}
