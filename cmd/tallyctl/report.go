package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/tallysheet/internal/ledger"
	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/tallysheet"
	"github.com/mmynk/tallysheet/pkg/tallyrpc"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func newSheetCmd(opts *options) *cobra.Command {
	var (
		sessionIDs []int64
		role       string
	)
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Print the paginated tally sheet for one or more sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().BuildTallySheet(cmd.Context(), connect.NewRequest(&tallyrpc.BuildTallySheetRequest{
				SessionIDs: sessionIDs,
				Role:       models.Role(role),
			}))
			if err != nil {
				return err
			}
			return printExport(cmd.OutOrStdout(), &resp.Msg.Export)
		},
	}
	cmd.Flags().Int64SliceVar(&sessionIDs, "session", nil, "Session IDs (repeatable)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleTally), "Role: tally or dispatcher")
	cmd.MarkFlagRequired("session")
	return cmd
}

func printExport(w io.Writer, export *tallysheet.Export) error {
	for _, sheet := range export.Sheets {
		fmt.Fprintf(w, "== %s (%s) ==\n", sheet.CustomerName, sheet.Role)
		for _, page := range sheet.Pages {
			if err := printPage(w, &page); err != nil {
				return err
			}
		}
		tw := newTabWriter(w)
		for _, ct := range sheet.CategoryTotals {
			fmt.Fprintf(tw, "%s\tbags %d\theads %d\tkg %s\t\n", ct.Category, ct.Bags, ct.Heads, ct.Kilograms.StringFixed(2))
		}
		fmt.Fprintf(tw, "TOTAL\tbags %d\theads %d\tkg %s\t\n", sheet.GrandTotal.Bags, sheet.GrandTotal.Heads, sheet.GrandTotal.Kilograms.StringFixed(2))
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, m := range sheet.Mismatches {
			fmt.Fprintf(w, "mismatch: classification %d tally %d dispatcher %d\n", m.ClassificationID, m.Tally, m.Dispatcher)
		}
		fmt.Fprintln(w)
	}

	if len(export.GrandTotals) > 0 {
		fmt.Fprintln(w, "== Grand total ==")
		tw := newTabWriter(w)
		for _, gt := range export.GrandTotals {
			fmt.Fprintf(tw, "%s\t%s\tbags %d\theads %d\tkg %s\t\n", gt.Category, gt.Classification, gt.Bags, gt.Heads, gt.Kilograms.StringFixed(2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printPage(w io.Writer, page *tallysheet.Page) error {
	fmt.Fprintf(w, "-- page %d of %d: %s --\n", page.PageNumber, page.TotalPages, page.Category)
	tw := newTabWriter(w)
	fmt.Fprint(tw, "#\t")
	for _, c := range page.Columns {
		fmt.Fprintf(tw, "%s\t", c.Classification)
	}
	fmt.Fprintln(tw)

	for i, row := range page.Grid {
		fmt.Fprintf(tw, "%d\t", i+1)
		for _, cell := range row {
			if cell != nil {
				fmt.Fprint(tw, strconv.FormatFloat(*cell, 'f', 2, 64))
			}
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprintln(tw)
	}

	for _, label := range []string{"bags", "heads", "kg"} {
		fmt.Fprintf(tw, "%s\t", label)
		for _, s := range page.Summaries {
			switch label {
			case "bags":
				fmt.Fprintf(tw, "%d\t", s.Bags)
			case "heads":
				fmt.Fprintf(tw, "%d\t", s.Heads)
			default:
				fmt.Fprintf(tw, "%s\t", s.Kilograms.StringFixed(2))
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func newSummaryCmd(opts *options) *cobra.Command {
	var (
		sessionIDs []int64
		role       string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print allocated bags per customer and classification",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().ExportSummary(cmd.Context(), connect.NewRequest(&tallyrpc.ExportSummaryRequest{
				SessionIDs: sessionIDs,
				Role:       models.Role(role),
			}))
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), &resp.Msg.Summary)
		},
	}
	cmd.Flags().Int64SliceVar(&sessionIDs, "session", nil, "Session IDs (repeatable)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleTally), "Role: tally or dispatcher")
	cmd.MarkFlagRequired("session")
	return cmd
}

func printSummary(w io.Writer, summary *tallysheet.Summary) error {
	tw := newTabWriter(w)
	for _, c := range summary.Customers {
		fmt.Fprintf(tw, "%s\t\t\t\n", c.CustomerName)
		for _, item := range c.Items {
			fmt.Fprintf(tw, "\t%s\t%s\t%d\n", item.Category, item.Classification, item.Bags)
		}
		fmt.Fprintf(tw, "\tsubtotal\t\t%d\n", c.Subtotal)
	}
	for _, category := range models.Categories {
		if n, ok := summary.GrandTotals[category.Code()]; ok {
			fmt.Fprintf(tw, "TOTAL\t%s\t\t%d\n", category.Code(), n)
		}
	}
	return tw.Flush()
}

func newReconcileCmd(opts *options) *cobra.Command {
	var sessionID int64
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "List classifications where tally and dispatcher counts disagree",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().ReconcileSession(cmd.Context(), connect.NewRequest(&tallyrpc.ReconcileSessionRequest{
				SessionID: sessionID,
			}))
			if err != nil {
				return err
			}
			return printMismatches(cmd.OutOrStdout(), resp.Msg.Threshold, resp.Msg.Mismatches)
		},
	}
	cmd.Flags().Int64Var(&sessionID, "session", 0, "Session ID")
	cmd.MarkFlagRequired("session")
	return cmd
}

func printMismatches(w io.Writer, threshold int, mismatches []ledger.Mismatch) error {
	if len(mismatches) == 0 {
		fmt.Fprintf(w, "no mismatches above %d bags\n", threshold)
		return nil
	}
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "classification\trequired\ttally\tdispatcher\tdifference\t")
	for _, m := range mismatches {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t\n", m.ClassificationID, m.Required, m.Tally, m.Dispatcher, m.Difference)
	}
	return tw.Flush()
}
