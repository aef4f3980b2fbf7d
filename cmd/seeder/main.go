package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/career"
	"github.com/matchpulse/progression-engine/internal/database"
	"github.com/matchpulse/progression-engine/internal/metrics"
	"github.com/matchpulse/progression-engine/internal/notifier/slack"
	"github.com/matchpulse/progression-engine/internal/processor"
	"github.com/matchpulse/progression-engine/internal/progression"
	"github.com/matchpulse/progression-engine/internal/pubsub"
)

// Simplified config loading for the script
func loadConfig() (dbName, migrationsDir string) {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName = os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "seed.db"
	}
	migrationsDir = os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}
	return dbName, migrationsDir
}

func main() {
	log.Info("Starting database seeder...")
	dbName, migrationsDir := loadConfig()

	db, teardown, err := database.InitDB(dbName, "", "", migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	progStore := progression.New(db)
	careerStore := career.New(db)
	badgeStore := badges.NewStore(db)
	engine := badges.NewEngine(badgeStore, badges.NewContextBuilder(careerStore, progStore), progStore)
	metricsSvc := metrics.NewService()
	counters := metrics.New(db)
	notifier := slack.NewNotifier("", "", metricsSvc)
	proc := processor.New(progStore, careerStore, engine, notifier, metricsSvc, counters, pubsub.NewMock("seeder"))

	cities := []string{"Madrid", "Lisbon", "Barcelona"}
	firstNames := []string{"Ada", "Alan", "Grace", "Edsger", "Barbara", "Donald", "Margaret", "Tony"}

	players := make([]progression.PlayerProfile, 0, len(firstNames))
	for i, name := range firstNames {
		players = append(players, progression.PlayerProfile{
			ID:        uuid.NewString(),
			FirstName: name,
			LastName:  fmt.Sprintf("Seed%02d", i+1),
			City:      cities[i%len(cities)],
			Role:      "player",
		})
	}
	if err := progStore.UpsertPlayers(players); err != nil {
		log.Fatalf("Failed to insert seed players: %s", err)
	}
	log.Info("Ensured seed players exist.", "count", len(players))

	const numWeeks = 12
	seasonStart := time.Now().AddDate(0, 0, -7*numWeeks)
	startTime := time.Now()
	totalMatches := 0

	for week := 0; week < numWeeks; week++ {
		matchesThisWeek := 2 + rand.Intn(2)
		for m := 0; m < matchesThisWeek; m++ {
			matchDate := seasonStart.AddDate(0, 0, 7*week+rand.Intn(6))
			city := cities[rand.Intn(len(cities))]
			organizer := players[rand.Intn(len(players))]

			// Pick four distinct players for the match.
			perm := rand.Perm(len(players))[:4]
			attendees := make([]processor.Attendee, 0, 4)
			for i, idx := range perm {
				attendees = append(attendees, processor.Attendee{
					UserID:   players[idx].ID,
					Attended: rand.Intn(10) > 0,
					MVP:      i == 0,
					Goals:    rand.Intn(4),
					Assists:  rand.Intn(3),
				})
			}

			matchCtx := processor.MatchContext{City: city, Date: matchDate, OrganizerID: organizer.ID}
			if err := proc.ProcessMatchCompletion(uuid.NewString(), matchCtx, attendees, true); err != nil {
				log.Error("Failed to process seeded match", "error", err)
			}
			totalMatches++
		}
	}

	seeded, err := counters.GetAll()
	if err != nil {
		log.Error("Failed to read counters", "error", err)
	}
	log.Info("Successfully seeded the season.", "matches", totalMatches, "duration", time.Since(startTime), "counters", seeded)
}
