package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "查看或运行定时批处理任务",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "列出配置中的任务及统计",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			scheduler, err := svc.GetSchedulerService()
			if err != nil {
				return err
			}
			tasks, err := scheduler.GetAllTasks()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				lastRun := "-"
				if t.LastRunAt != nil {
					lastRun = t.LastRunAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{
					t.ID, t.Name, string(t.Action), t.Cron, yesNo(t.Enabled), string(t.Status),
					strconv.Itoa(t.RunCount), strconv.Itoa(t.SuccessCount), strconv.Itoa(t.FailureCount), lastRun,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Action", "Cron", "Enabled", "Status", "Runs", "OK", "Failed", "Last Run"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run <task-id>",
		Short: "在前台运行一次任务",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			scheduler, err := svc.GetSchedulerService()
			if err != nil {
				return err
			}
			t, err := scheduler.GetTask(args[0])
			if err != nil {
				return err
			}
			return ctx.withBatchLock(string(t.Action), func() error {
				run, err := scheduler.RunTask(cmd.Context(), t.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d, Success: %d, Failed: %d\n", run.Total, run.Succeeded, run.Failed)
				if run.Err != "" {
					return fmt.Errorf("task %s: %s", t.Name, run.Err)
				}
				return nil
			})
		},
	})

	return cmd
}
