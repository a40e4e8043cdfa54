// Command migrate copies a league from the JSON file store into
// Firestore: config, matches, round histories, local users, and
// memberships.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"league-backend/internal/store"
)

func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		log.Fatal("GCP_PROJECT_ID is required")
	}

	leagueID := os.Getenv("LEAGUE_ID")
	if leagueID == "" {
		log.Fatal("LEAGUE_ID is required")
	}

	databaseID := os.Getenv("FIRESTORE_DATABASE")

	ctx := context.Background()

	// Open source (file store)
	src, err := store.NewFileStore(dataDir)
	if err != nil {
		log.Fatalf("Failed to open file store: %v", err)
	}

	// Open destination (firestore)
	dst, err := store.NewFirestoreStore(ctx, projectID, databaseID, leagueID)
	if err != nil {
		log.Fatalf("Failed to open firestore store: %v", err)
	}
	defer dst.Close()

	dbName := databaseID
	if dbName == "" {
		dbName = "(default)"
	}
	fmt.Printf("Migrating from %s -> Firestore (project: %s, database: %s, league: %s)\n\n", dataDir, projectID, dbName, leagueID)

	// League config
	cfg, err := src.GetConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to read league config: %v", err)
	}
	fmt.Printf("League: %s\n", cfg.LeagueName)
	fmt.Printf("  Teams: %d, Scheduled weeks: %d\n", len(cfg.Teams), len(cfg.Schedule))
	if err := dst.SaveConfig(ctx, cfg); err != nil {
		log.Fatalf("Failed to write league config: %v", err)
	}
	fmt.Printf("  OK\n")

	// Matches
	matches, err := src.ListMatches(ctx)
	if err != nil {
		log.Fatalf("Failed to list matches: %v", err)
	}
	keys := make([]string, 0, len(matches))
	for key := range matches {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Printf("\nMatches: %d\n", len(matches))
	for _, key := range keys {
		m := matches[key]
		fmt.Printf("  %s: %s vs %s [%s]\n", key, m.Team1Name, m.Team2Name, m.Status)
		if err := dst.SaveMatch(ctx, key, &m); err != nil {
			fmt.Printf("    SKIP: %v\n", err)
			continue
		}
		fmt.Printf("    OK\n")
	}

	// Round histories
	rounds, err := src.ListAllRounds(ctx)
	if err != nil {
		log.Fatalf("Failed to list round histories: %v", err)
	}
	fmt.Printf("\nPlayer round histories: %d\n", len(rounds))
	for pid, rs := range rounds {
		fmt.Printf("  %s (%s): %d round(s)\n", cfg.PlayerName(pid), pid, len(rs))
		if err := dst.SaveRounds(ctx, pid, rs); err != nil {
			fmt.Printf("    SKIP: %v\n", err)
			continue
		}
		fmt.Printf("    OK\n")
	}

	// Local users
	users, err := src.ListLocalUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to list local users: %v", err)
	}
	fmt.Printf("\nLocal users: %d\n", len(users))
	for _, u := range users {
		fmt.Printf("  %s <%s>\n", u.Name, u.Email)
		if err := dst.CreateLocalUser(ctx, &u); err != nil {
			fmt.Printf("    SKIP: %v\n", err)
			continue
		}
		fmt.Printf("    OK\n")
	}

	// Memberships
	members, err := src.ListMemberships(ctx)
	if err != nil {
		log.Fatalf("Failed to list memberships: %v", err)
	}
	fmt.Printf("\nMemberships: %d\n", len(members))
	for _, m := range members {
		fmt.Printf("  %s [%s]\n", m.UID, m.Role)
		if err := dst.SaveMembership(ctx, &m); err != nil {
			fmt.Printf("    SKIP: %v\n", err)
			continue
		}
		fmt.Printf("    OK\n")
	}

	fmt.Printf("\nDone. Migrated %d match(es), %d round history(ies), %d user(s), %d membership(s).\n",
		len(matches), len(rounds), len(users), len(members))
}
