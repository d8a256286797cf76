package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/Eursukkul/table-booking/config"
	"github.com/Eursukkul/table-booking/internal/dto"
	"github.com/Eursukkul/table-booking/internal/models"
	"github.com/Eursukkul/table-booking/internal/service"
)

func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeRepo, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			st := svc.Snapshot(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seats available: %d of %d\n\n", st.SeatsLeft, st.Capacity)
			return writeTable(out, st.Reservations)
		},
	}
}

func NewExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the persisted reservations as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeRepo, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(svc.Snapshot(cmd.Context()).Reservations)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func NewImportCmd() *cobra.Command {
	var inPath, serverURL string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the ledger with reservations read from a JSON file",
		Long: "Replace the ledger with reservations read from a JSON file.\n\n" +
			"The file is sent to the running server so its ledger stays the only writer. " +
			"When nothing listens at --server, the store is written directly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", inPath, err)
			}
			var reservations []models.Reservation
			if err := json.Unmarshal(raw, &reservations); err != nil {
				return fmt.Errorf("decode %s: %w", inPath, err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = "http://localhost:" + cfg.ServerPort
			}

			resp, err := importViaServer(cmd.Context(), serverURL, raw)
			if errors.Is(err, errNoServer) {
				slog.Info("No server running, importing into the store directly", "server", serverURL)
				resp, err = importDirect(cmd.Context(), cfg, reservations)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d reservations, %d seats available\n", len(resp.Reservations), resp.SeatsLeft)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "JSON file to import")
	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of the running server (default http://localhost:$SERVER_PORT)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

var errNoServer = errors.New("no server listening")

var importClient = &http.Client{Timeout: 10 * time.Second}

func importViaServer(ctx context.Context, serverURL string, body []byte) (dto.LedgerResponse, error) {
	url := strings.TrimRight(serverURL, "/") + "/api/v1/reservations/import"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return dto.LedgerResponse{}, fmt.Errorf("build import request: %w", err)
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	resp, err := importClient.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return dto.LedgerResponse{}, errNoServer
		}
		return dto.LedgerResponse{}, fmt.Errorf("import via %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if resp.StatusCode == http.StatusBadRequest {
			return dto.LedgerResponse{}, fmt.Errorf("%w: %s", service.ErrValidation, e.Message)
		}
		return dto.LedgerResponse{}, fmt.Errorf("import rejected by server: %d %s", resp.StatusCode, e.Message)
	}

	var out dto.LedgerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return dto.LedgerResponse{}, fmt.Errorf("decode import response: %w", err)
	}
	return out, nil
}

func importDirect(ctx context.Context, cfg *config.Config, reservations []models.Reservation) (dto.LedgerResponse, error) {
	svc, closeRepo, err := newService(ctx, cfg)
	if err != nil {
		return dto.LedgerResponse{}, err
	}
	defer closeRepo()

	st, err := svc.Replace(ctx, reservations)
	if err != nil {
		return dto.LedgerResponse{}, err
	}
	return dto.ToLedgerResponse(st), nil
}

func openService(cmd *cobra.Command) (service.LedgerService, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return newService(cmd.Context(), cfg)
}

func newService(ctx context.Context, cfg *config.Config) (service.LedgerService, func(), error) {
	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.NewLedgerService(ctx, repo, cfg.Capacity)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}
	return svc, closeRepo, nil
}

func writeTable(w io.Writer, reservations []models.Reservation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPHONE\tGUESTS\tCHECK-IN\tSTATUS")
	for i, r := range reservations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i, r.Name, r.Phone, r.GuestCount, r.CheckInTime.Local().Format("Jan 2 15:04"), r.Status)
	}
	return tw.Flush()
}
