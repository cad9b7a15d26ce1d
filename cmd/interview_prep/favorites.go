package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-prep/internal/db"
	"github.com/jonathan/interview-prep/internal/schemas"
	"github.com/jonathan/interview-prep/internal/types"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage saved questions",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved questions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved question",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesDelete,
}

var favoritesImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import saved questions from a JSON array",
	Long:  `Imports favorites exported with "favorites list --json". Every record is schema-checked before anything is written.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesImport,
}

var (
	favLimit int
	favJSON  bool
)

func init() {
	favoritesListCmd.Flags().IntVar(&favLimit, "limit", db.DefaultFavoritesLimit, "Maximum number of favorites to list")
	favoritesListCmd.Flags().BoolVar(&favJSON, "json", false, "Print favorites as JSON")
	favoritesCmd.AddCommand(favoritesListCmd, favoritesDeleteCmd, favoritesImportCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func withStore(fn func(ctx context.Context, store db.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func runFavoritesList(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, store db.Store) error {
		favorites, err := store.ListFavorites(ctx, favLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if favJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(favorites)
		}
		return writeFavoritesTable(out, favorites)
	})
}

func writeFavoritesTable(out io.Writer, favorites []types.FavoriteQuestion) error {
	if len(favorites) == 0 {
		_, err := fmt.Fprintln(out, "No favorites saved.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tSAVED\tQUESTION")
	for _, f := range favorites {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Category, f.CreatedAt.Format("2006-01-02"), truncate(f.Question, 70))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func runFavoritesDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store db.Store) error {
		n, err := store.DeleteFavorite(ctx, args[0])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("favorite %s not found", args[0])
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted favorite %s\n", args[0])
		return err
	})
}

func runFavoritesImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	favorites, err := decodeFavorites(data)
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, store db.Store) error {
		for i := range favorites {
			if err := store.InsertFavorite(ctx, &favorites[i]); err != nil {
				return fmt.Errorf("favorite %d (%s): %w", i, favorites[i].ID, err)
			}
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d favorites\n", len(favorites))
		return err
	})
}

// decodeFavorites parses a JSON array of favorites, checking each record
// against the favorite schema.
func decodeFavorites(data []byte) ([]types.FavoriteQuestion, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("expected a JSON array of favorites: %w", err)
	}

	favorites := make([]types.FavoriteQuestion, 0, len(raw))
	for i, r := range raw {
		if err := schemas.Validate(schemas.Favorite, string(r)); err != nil {
			return nil, fmt.Errorf("favorite %d: %w", i, err)
		}
		var f types.FavoriteQuestion
		if err := json.Unmarshal(r, &f); err != nil {
			return nil, fmt.Errorf("favorite %d: %w", i, err)
		}
		favorites = append(favorites, f)
	}
	return favorites, nil
}
