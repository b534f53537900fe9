package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/service"
	"github.com/brandpreneur/client-portal/internal/infrastructure/config"
	mongodb "github.com/brandpreneur/client-portal/internal/infrastructure/db/mongo"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Inspect and manage client records in MongoDB",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List client records, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClients(cmd.Context(), func(ctx context.Context, svc *service.ClientService) error {
			recs, err := svc.List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCREATED")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one client record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClients(cmd.Context(), func(ctx context.Context, svc *service.ClientService) error {
			rec, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		})
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client record; the sign-in identity is kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClients(cmd.Context(), func(ctx context.Context, svc *service.ClientService) error {
			if err := svc.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		})
	},
}

var clientsImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Write a client record from JSON (as printed by show), replacing any existing one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var rec domain.ClientRecord
		dec := json.NewDecoder(in)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode client record: %w", err)
		}

		return withClients(cmd.Context(), func(ctx context.Context, svc *service.ClientService) error {
			if err := svc.Import(ctx, &rec); err != nil {
				return err
			}
			fmt.Printf("imported %s\n", rec.ID)
			return nil
		})
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd, clientsShowCmd, clientsDeleteCmd, clientsImportCmd)
	rootCmd.AddCommand(clientsCmd)
}

func withClients(ctx context.Context, fn func(context.Context, *service.ClientService) error) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	return fn(ctx, service.NewClientService(mongodb.NewClientRepository(db), zerolog.Nop()))
}
