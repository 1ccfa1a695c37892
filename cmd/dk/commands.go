package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avollmer/daykeep/internal/domain/goal"
	"github.com/avollmer/daykeep/internal/domain/snapshot"
	"github.com/avollmer/daykeep/internal/domain/streak"
	"github.com/avollmer/daykeep/internal/domain/task"
	"github.com/avollmer/daykeep/internal/metrics"
	"github.com/avollmer/daykeep/internal/repository"
)

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(header)
	return tw
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}
	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(userListCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				u, err := a.users.Create(cmd.Context(), name)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(u)
				}
				fmt.Println(u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func userListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				users, err := a.users.List(cmd.Context())
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(users)
				}
				tw := newTable(table.Row{"ID", "Name", "Created"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Name, u.CreatedAt.Format("2006-01-02")})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func goalCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "goal", Short: "Manage goals and key results"}
	cmd.AddCommand(goalCreateCmd())
	cmd.AddCommand(goalListCmd())
	cmd.AddCommand(goalStatusCmd())
	cmd.AddCommand(goalTransitionCmd("complete", goal.StatusCompleted))
	cmd.AddCommand(goalTransitionCmd("archive", goal.StatusArchived))
	cmd.AddCommand(krCmd())
	return cmd
}

func goalCreateCmd() *cobra.Command {
	var title, horizon, start, end string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				g, err := a.goals.Create(cmd.Context(), userID, goal.CreateRequest{
					Title:     title,
					Horizon:   goal.Horizon(horizon),
					StartDate: start,
					EndDate:   end,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(g)
				}
				fmt.Println(g.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "goal title")
	cmd.Flags().StringVar(&horizon, "horizon", "QUARTER", "MONTH, QUARTER, or YEAR")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func goalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				goals, err := a.goals.ListByUser(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(goals)
				}
				tw := newTable(table.Row{"ID", "Title", "Horizon", "Status", "Start", "End", "Progress"})
				for _, g := range goals {
					progress, err := a.goals.Progress(cmd.Context(), userID, g.ID)
					if err != nil {
						return err
					}
					tw.AppendRow(table.Row{
						g.ID, g.Title, g.Horizon, g.Status, g.StartDate, g.EndDate,
						fmt.Sprintf("%.0f%%", progress*100),
					})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func goalStatusCmd() *cobra.Command {
	var window int
	cmd := &cobra.Command{
		Use:   "status <goal-id>",
		Short: "Show a goal's progress, trend, and snapshot history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				ctx := cmd.Context()
				g, err := a.goals.Get(ctx, userID, args[0])
				if err != nil {
					return err
				}
				krs, err := a.goals.KeyResults(ctx, userID, g.ID)
				if err != nil {
					return err
				}
				history, err := a.snapshots.ListByGoal(ctx, g.ID)
				if err != nil {
					return err
				}
				if window < 1 {
					window = a.cfg.Trend.Window
				}
				trend := snapshot.ComputeTrend(history, window)

				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"goal":       g,
						"keyResults": krs,
						"progress":   goal.WeightedProgress(krs),
						"trend":      trend,
						"snapshots":  history,
					})
				}

				fmt.Printf("%s [%s] %s  progress %.0f%%  trend %s\n",
					g.Title, g.Horizon, g.Status, goal.WeightedProgress(krs)*100, trend)
				tw := newTable(table.Row{"KR", "Type", "Current", "Target", "Progress"})
				for _, kr := range krs {
					tw.AppendRow(table.Row{
						kr.Title, kr.Type, kr.CurrentValue, kr.TargetValue,
						fmt.Sprintf("%.0f%%", kr.Progress()*100),
					})
				}
				tw.Render()

				if len(history) > 0 {
					tw = newTable(table.Row{"Date", "Actual", "Expected"})
					for _, s := range history {
						tw.AppendRow(table.Row{
							s.Date,
							fmt.Sprintf("%.2f", s.Actual),
							fmt.Sprintf("%.2f", s.Expected),
						})
					}
					tw.Render()
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&window, "window", 0, "trend window in snapshots (default from config)")
	return cmd
}

func goalTransitionCmd(verb string, to goal.Status) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <goal-id>",
		Short: verb + " a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				g, err := a.goals.Transition(cmd.Context(), userID, args[0], to)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(g)
				}
				fmt.Printf("%s: %s\n", g.Title, g.Status)
				return nil
			})
		},
	}
}

func krCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "kr", Short: "Manage key results"}
	cmd.AddCommand(krAddCmd())
	return cmd
}

func krAddCmd() *cobra.Command {
	var goalID, title, krType string
	var startValue, targetValue, weight float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a key result to a goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				kr, err := a.goals.AddKeyResult(cmd.Context(), userID, goal.AddKeyResultRequest{
					GoalID:      goalID,
					Title:       title,
					Type:        goal.KeyResultType(krType),
					StartValue:  startValue,
					TargetValue: targetValue,
					Weight:      weight,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(kr)
				}
				fmt.Println(kr.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&goalID, "goal", "", "goal id")
	cmd.Flags().StringVar(&title, "title", "", "key result title")
	cmd.Flags().StringVar(&krType, "type", "", "ACCUMULATIVE, HABIT, or MILESTONE")
	cmd.Flags().Float64Var(&startValue, "start-value", 0, "starting value")
	cmd.Flags().Float64Var(&targetValue, "target", 0, "target value")
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight across the goal's key results")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Manage tasks"}
	cmd.AddCommand(taskCreateCmd())
	cmd.AddCommand(taskCompleteCmd())
	cmd.AddCommand(taskListCmd())
	return cmd
}

func taskCreateCmd() *cobra.Command {
	var title, goalID, krID string
	var contribution float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				req := task.CreateRequest{Title: title, Contribution: contribution}
				if goalID != "" {
					req.GoalID = &goalID
				}
				if krID != "" {
					req.KeyResultID = &krID
				}
				created, err := a.tasks.Create(cmd.Context(), userID, req)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				fmt.Println(created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&goalID, "goal", "", "linked goal id")
	cmd.Flags().StringVar(&krID, "kr", "", "linked key result id (requires --goal)")
	cmd.Flags().Float64Var(&contribution, "contribution", 0, "value added to an accumulative key result on completion")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				completed, err := a.tasks.Complete(cmd.Context(), userID, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(completed)
				}
				fmt.Printf("%s: %s\n", completed.Title, completed.Status)
				return nil
			})
		},
	}
}

func taskListCmd() *cobra.Command {
	var status, goalID string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				tasks, err := a.tasks.List(cmd.Context(), userID, task.ListOptions{
					Status: task.Status(status),
					GoalID: goalID,
					Limit:  limit,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := newTable(table.Row{"ID", "Title", "Status", "Goal", "KR", "Contribution"})
				for _, item := range tasks {
					goalRef, krRef := "", ""
					if item.GoalID != nil {
						goalRef = *item.GoalID
					}
					if item.KeyResultID != nil {
						krRef = *item.KeyResultID
					}
					tw.AppendRow(table.Row{item.ID, item.Title, item.Status, goalRef, krRef, item.Contribution})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "TODO or DONE")
	cmd.Flags().StringVar(&goalID, "goal", "", "filter by goal")
	cmd.Flags().IntVar(&limit, "limit", 0, "max results")
	return cmd
}

func dayCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "day", Short: "Manage daily plans (execution truth)"}
	cmd.AddCommand(dayPlanCmd())
	cmd.AddCommand(dayAddCmd())
	cmd.AddCommand(dayMarkCmd("done", "Mark a planned task completed", true))
	cmd.AddCommand(dayMarkCmd("miss", "Mark a planned task missed", false))
	cmd.AddCommand(dayCloseCmd())
	cmd.AddCommand(dayShowCmd())
	return cmd
}

func dayPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [day]",
		Short: "Open a plan for a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				p, err := a.plans.PlanDay(cmd.Context(), userID, dayArg(args, a.clk))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("planned %s\n", p.Day)
				return nil
			})
		},
	}
}

func dayAddCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Plan a task for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				if day == "" {
					day = a.clk.Today()
				}
				p, err := a.plans.AddEntry(cmd.Context(), userID, day, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("%s: %d planned\n", p.Day, len(p.Entries))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day (default today)")
	return cmd
}

func dayMarkCmd(verb, short string, completed bool) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   verb + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				if day == "" {
					day = a.clk.Today()
				}
				var p any
				var markErr error
				if completed {
					p, markErr = a.plans.MarkCompleted(cmd.Context(), userID, day, args[0])
				} else {
					p, markErr = a.plans.MarkMissed(cmd.Context(), userID, day, args[0])
				}
				if markErr != nil {
					return markErr
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("%s %s\n", args[0], verb)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day (default today)")
	return cmd
}

func dayCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close [day]",
		Short: "Close a day; its record becomes permanently immutable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				p, err := a.plans.CloseDay(cmd.Context(), userID, dayArg(args, a.clk))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				total, completed := p.Totals()
				fmt.Printf("closed %s: %d/%d completed\n", p.Day, completed, total)
				return nil
			})
		},
	}
}

func dayShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [day]",
		Short: "Show a day's plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				p, err := a.plans.Get(cmd.Context(), userID, dayArg(args, a.clk))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				state := "open"
				if p.Closed {
					state = "closed"
				}
				fmt.Printf("%s (%s)\n", p.Day, state)
				tw := newTable(table.Row{"Task", "Status"})
				for _, e := range p.Entries {
					tw.AppendRow(table.Row{e.TaskID, e.Status})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func weekCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "week", Short: "Manage weekly plans (intent)"}
	cmd.AddCommand(weekSetCmd())
	cmd.AddCommand(weekShowCmd())
	return cmd
}

func weekSetCmd() *cobra.Command {
	var focus string
	var taskIDs []string
	cmd := &cobra.Command{
		Use:   "set <week-start>",
		Short: "Set or replace a week's intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				w, err := a.plans.UpsertWeekPlan(cmd.Context(), userID, args[0], focus, taskIDs)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(w)
				}
				fmt.Printf("week of %s: %q, %d tasks\n", w.WeekStart, w.Focus, len(w.TaskIDs))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&focus, "focus", "", "focus line for the week")
	cmd.Flags().StringArrayVar(&taskIDs, "task", []string{}, "intended task id (repeatable)")
	return cmd
}

func weekShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <week-start>",
		Short: "Show a week's intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				w, err := a.plans.GetWeekPlan(cmd.Context(), userID, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(w)
				}
				fmt.Printf("week of %s: %s\n", w.WeekStart, w.Focus)
				for _, id := range w.TaskIDs {
					fmt.Println(" -", id)
				}
				return nil
			})
		},
	}
}

func streakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				state, err := a.streaks.Get(cmd.Context(), userID)
				if errors.Is(err, repository.ErrNotFound) {
					state = &streak.State{UserID: userID}
				} else if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(state)
				}
				fmt.Printf("%d\n", state.CurrentStreak)
				return nil
			})
		},
	}
}

func auditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				entries, err := a.auditLog.ListByUser(cmd.Context(), userID, limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := newTable(table.Row{"When", "Type", "Summary"})
				for _, e := range entries {
					tw.AppendRow(table.Row{e.OccurredAt.Format("2006-01-02 15:04"), e.Type, e.Summary})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries")
	return cmd
}

func replayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Republish the user's stored facts through the bus",
		Long: `Republishes every stored fact in occurrence order. Consumers skip
facts they hold receipts for, so replay only fills gaps left by earlier
partial failures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				facts, err := a.facts.ListByUser(cmd.Context(), userID)
				if err != nil {
					return err
				}
				for _, f := range facts {
					if err := a.bus.Publish(cmd.Context(), f); err != nil {
						a.logger.Error("replay delivery incomplete", "fact_id", f.ID, "error", err)
					}
				}
				fmt.Printf("replayed %d facts\n", len(facts))
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pipeline metrics for this invocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := metrics.Registry.Gather()
			if err != nil {
				return err
			}
			tw := newTable(table.Row{"Metric", "Labels", "Value"})
			for _, mf := range families {
				for _, m := range mf.GetMetric() {
					labels := ""
					for _, lp := range m.GetLabel() {
						if labels != "" {
							labels += ","
						}
						labels += lp.GetName() + "=" + lp.GetValue()
					}
					var value float64
					switch {
					case m.GetCounter() != nil:
						value = m.GetCounter().GetValue()
					case m.GetGauge() != nil:
						value = m.GetGauge().GetValue()
					case m.GetHistogram() != nil:
						value = float64(m.GetHistogram().GetSampleCount())
					}
					tw.AppendRow(table.Row{mf.GetName(), labels, value})
				}
			}
			tw.Render()
			return nil
		},
	}
}
