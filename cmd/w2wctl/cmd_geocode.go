package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/app"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/service"
)

// w2wctl geocode-orders
func geocodeOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode-orders",
		Short: "Fill in missing delivery coordinates of orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				report, err := a.Service.BackfillOrderCoordinates(ctx)
				renderBackfill(cmd.OutOrStdout(), report)
				return err
			})
		},
	}
}

func renderBackfill(w io.Writer, report service.BackfillReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Order", "Address", "Lat", "Lon"})
	for _, it := range report.Items {
		tw.AppendRow(table.Row{it.Number, it.Address, fmt.Sprintf("%.6f", it.Point.Lat), fmt.Sprintf("%.6f", it.Point.Lon)})
	}
	tw.AppendFooter(table.Row{"", "Updated", fmt.Sprintf("%d/%d", report.Updated, report.Total), ""})
	tw.Render()
}
