package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/tallysheet/internal/auth"
	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/storage"
)

func newSeedCmd(opts *options) *cobra.Command {
	var plantName string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the standard classifications to a plant",
		Long: `Add the standard weight classifications to a plant, creating the plant
if it does not exist. Classifications the plant already has are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			ctx := cmd.Context()

			plant, err := store.GetPlantByName(ctx, plantName)
			if errors.Is(err, storage.ErrNotFound) {
				plant = &models.Plant{Name: plantName}
				err = store.CreatePlant(ctx, plant)
			}
			if err != nil {
				return err
			}

			result, err := store.SeedStandardClassifications(ctx, plant.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "plant %d (%s): %d created, %d skipped\n", plant.ID, plant.Name, result.Created, result.Skipped)
			for _, err := range result.Failed {
				fmt.Fprintf(out, "  failed: %v\n", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&plantName, "plant", "", "Plant name")
	cmd.MarkFlagRequired("plant")
	return cmd
}

func newSessionCmd(opts *options) *cobra.Command {
	var (
		plantName string
		customer  string
		date      string
	)
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create a tally session for a new customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				var err error
				if day, err = time.Parse(time.DateOnly, date); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			ctx := cmd.Context()

			plant, err := store.GetPlantByName(ctx, plantName)
			if err != nil {
				return fmt.Errorf("plant %q: %w", plantName, err)
			}
			c := &models.Customer{Name: customer}
			if err := store.CreateCustomer(ctx, c); err != nil {
				return err
			}
			session := &models.TallySession{CustomerID: c.ID, PlantID: plant.ID, Date: day}
			if err := store.CreateSession(ctx, session); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %d: %s at %s on %s\n",
				session.ID, customer, plant.Name, session.Date.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVar(&plantName, "plant", "", "Plant name")
	cmd.Flags().StringVar(&customer, "customer", "", "Customer name")
	cmd.Flags().StringVar(&date, "date", "", "Session date, YYYY-MM-DD (default: today)")
	cmd.MarkFlagRequired("plant")
	cmd.MarkFlagRequired("customer")
	return cmd
}

func newSessionsCmd(opts *options) *cobra.Command {
	var (
		plantName string
		status    string
		from      string
		to        string
	)
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List tally sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := storage.SessionFilter{Status: models.SessionStatus(status)}
			for _, d := range []struct {
				flag  string
				value string
				dst   *time.Time
			}{
				{"--from", from, &filter.From},
				{"--to", to, &filter.To},
			} {
				if d.value == "" {
					continue
				}
				t, err := time.Parse(time.DateOnly, d.value)
				if err != nil {
					return fmt.Errorf("invalid %s: %w", d.flag, err)
				}
				*d.dst = t
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			ctx := cmd.Context()

			if plantName != "" {
				plant, err := store.GetPlantByName(ctx, plantName)
				if err != nil {
					return fmt.Errorf("plant %q: %w", plantName, err)
				}
				filter.PlantID = plant.ID
			}

			sessions, err := store.ListSessions(ctx, filter)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tSTATUS")
			for _, s := range sessions {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Date.Format(time.DateOnly), s.CustomerName, s.Status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&plantName, "plant", "", "Only sessions at this plant")
	cmd.Flags().StringVar(&status, "status", "", "Only sessions with this status: ongoing, completed or cancelled")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Latest date, YYYY-MM-DD")
	return cmd
}

func newRequireCmd(opts *options) *cobra.Command {
	var (
		sessionID        int64
		classificationID int64
		bags             int
	)
	cmd := &cobra.Command{
		Use:   "require",
		Short: "Set the required bags for a classification in a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bags < 0 {
				return fmt.Errorf("--bags must be 0 or more, got %d", bags)
			}
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			a, err := store.SetRequiredBags(cmd.Context(), sessionID, classificationID, bags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %d classification %d: required %d, tally %d, dispatcher %d\n",
				a.SessionID, a.WeightClassificationID, a.RequiredBags, a.AllocatedBagsTally, a.AllocatedBagsDispatcher)
			return nil
		},
	}
	cmd.Flags().Int64Var(&sessionID, "session", 0, "Session ID")
	cmd.Flags().Int64Var(&classificationID, "classification", 0, "Classification ID")
	cmd.Flags().IntVar(&bags, "bags", 0, "Required bags")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("classification")
	return cmd
}

func newTokenCmd(opts *options) *cobra.Command {
	var (
		userID   int64
		viewLogs bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with auth.jwt_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not set")
			}
			var perms []string
			if viewLogs {
				perms = append(perms, auth.PermissionViewTallyLogs)
			}
			token, err := auth.NewJWTManager(opts.cfg.Auth.JWTSecret, opts.cfg.Auth.TokenDuration).Generate(userID, perms...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	cmd.Flags().BoolVar(&viewLogs, "view-logs", false, "Grant "+auth.PermissionViewTallyLogs)
	cmd.MarkFlagRequired("user")
	return cmd
}
