package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

var exportOpts struct {
	out    string
	status string
	from   string
	to     string
	query  string
}

var exportCmd = &cobra.Command{
	Use:   "export-bookings",
	Short: "Write bookings as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, env)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := exportFilter(a)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOpts.out != "" && exportOpts.out != "-" {
			file, err := os.Create(exportOpts.out)
			if err != nil {
				return err
			}
			defer file.Close()
			w = file
		}
		n, err := a.bookings.ExportCSV(ctx, w, f)
		if err != nil {
			return err
		}
		zap.L().Info("bookings exported", zap.Int("rows", n), zap.String("out", exportOpts.out))
		return nil
	},
}

func exportFilter(a *app) (models.BookingFilter, error) {
	f := models.BookingFilter{
		Status: models.BookingStatus(strings.ToLower(exportOpts.status)),
		Query:  exportOpts.query,
	}
	if exportOpts.from != "" {
		t, err := utils.ParseDate(exportOpts.from, a.loc)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if exportOpts.to != "" {
		t, err := utils.ParseDate(exportOpts.to, a.loc)
		if err != nil {
			return f, err
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	return f, nil
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.out, "out", "o", "-", "output file, - for stdout")
	f.StringVar(&exportOpts.status, "status", "", "only bookings in this status")
	f.StringVar(&exportOpts.from, "from", "", "first pickup day, YYYY-MM-DD")
	f.StringVar(&exportOpts.to, "to", "", "last pickup day, YYYY-MM-DD")
	f.StringVarP(&exportOpts.query, "query", "q", "", "match reference, name, phone or email")
}
