package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aijiaobin/video-api/internal/application/services/ingest"
	"github.com/Aijiaobin/video-api/pkg/executor"
)

type batchFunc func(svc *ingest.Service, ctx context.Context, exec *executor.BatchExecutor, limit int) (*executor.BatchResult, error)

func newParseCommand(ctx *commandContext) *cobra.Command {
	return newBatchCommand(ctx, "parse", "解析所有尚未解析成功的分享", (*ingest.Service).ParseAll)
}

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	return newBatchCommand(ctx, "scrape", "为缺少元数据的分享和合集文件刮削 TMDB", (*ingest.Service).ScrapeAll)
}

func newBatchCommand(ctx *commandContext, name, short string, run batchFunc) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBatchLock(name, func() error {
				svc, err := ctx.services()
				if err != nil {
					return err
				}
				result, err := run(svc.GetIngestService(), cmd.Context(), svc.GetBatchExecutor(), limit)
				if err != nil {
					return err
				}
				printBatchResult(cmd.OutOrStdout(), result)
				if result.FailCount > 0 {
					return fmt.Errorf("%s: %d of %d units failed", name, result.FailCount, result.TotalCount)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "最多处理的分享数，0 不限")
	return cmd
}

func printBatchResult(w io.Writer, result *executor.BatchResult) {
	fmt.Fprintln(w, result.FormatResultSummary())
	failed := result.Failed()
	if len(failed) == 0 {
		return
	}
	rows := make([][]string, 0, len(failed))
	for _, f := range failed {
		rows = append(rows, []string{f.Name, f.Err.Error()})
	}
	fmt.Fprintln(w, renderTable([]string{"Share", "Error"}, rows, nil))
}
