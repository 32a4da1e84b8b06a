package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"figurehub/database"
	"figurehub/internal/config"
	"figurehub/internal/http-api/middleware/auth"
	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/service"
)

// Seeds the catalog with demo data: two series with volumes, figures with
// programmed tag UIDs, their volume ranges, a demo user and pending claim
// transactions. Prints signed tap URLs for tag programming.
func main() {
	log.Println("=== FigureHub Catalog Seed ===")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// Demo user
	passwordHash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("could not hash demo password: %v", err)
	}
	demoUser := &models.User{
		Username: "demo",
		Email:    "demo@example.com",
		Password: passwordHash,
	}
	if err := db.Where(models.User{Email: demoUser.Email}).FirstOrCreate(demoUser).Error; err != nil {
		log.Fatalf("could not create demo user: %v", err)
	}

	type seriesSeed struct {
		title   string
		author  string
		volumes []string
	}
	seedSeries := []seriesSeed{
		{
			title:  "Magic Academy Adventure",
			author: "A. Hoshino",
			volumes: []string{
				"Vol. 1: Enrollment", "Vol. 2: The First Trial", "Vol. 3: Forbidden Magic",
				"Vol. 4: The Dark Lord", "Vol. 5: Final Battle", "Vol. 6: A New Journey",
				"Vol. 7: Light and Shadow",
			},
		},
		{
			title:  "Samurai Era",
			author: "K. Tachibana",
			volumes: []string{
				"Vol. 1: Path of the Sword", "Vol. 2: The Rival", "Vol. 3: Journey of Trials",
				"Vol. 4: The Master Returns", "Vol. 5: The Strongest Blade",
			},
		},
	}

	var allSeries []*models.Series
	for _, s := range seedSeries {
		series := &models.Series{Title: s.title, Author: &s.author}
		if err := db.Where(models.Series{Title: s.title}).FirstOrCreate(series).Error; err != nil {
			log.Fatalf("could not create series: %v", err)
		}
		for i, volumeTitle := range s.volumes {
			volume := &models.Volume{
				SeriesID: series.ID,
				VolumeNo: i + 1,
				Title:    volumeTitle,
			}
			if err := db.Where(models.Volume{SeriesID: series.ID, VolumeNo: i + 1}).
				FirstOrCreate(volume).Error; err != nil {
				log.Fatalf("could not create volume: %v", err)
			}
		}
		allSeries = append(allSeries, series)
	}

	type figureSeed struct {
		title     string
		tagUID    string
		seriesIdx int
		price     int
		// bundle unlocks volumes [1..bundleTo]
		bundleTo int
	}
	seedFigures := []figureSeed{
		{"Hanako Chibi Figure", "DEMO-TAG-001", 0, 4800, 3},
		{"Rena & Yuki Deluxe Figure", "DEMO-TAG-002", 0, 9800, 7},
		{"Sakura Kimono Figure", "DEMO-TAG-003", 1, 5200, 3},
		{"Ryoma Battle Pose Figure", "DEMO-TAG-004", 1, 6400, 5},
	}

	nfc := service.NewNfcService(cfg.NFCSecret, cfg.TapMaxAge)

	for _, f := range seedFigures {
		series := allSeries[f.seriesIdx]
		figure := &models.Figure{
			SeriesID: series.ID,
			Title:    f.title,
			TagUID:   f.tagUID,
			Status:   models.FigureStatusUnclaimed,
			Price:    f.price,
		}
		if err := db.Where(models.Figure{TagUID: f.tagUID}).FirstOrCreate(figure).Error; err != nil {
			log.Fatalf("could not create figure: %v", err)
		}

		var volumes []models.Volume
		if err := db.Where("series_id = ? AND volume_no <= ?", series.ID, f.bundleTo).
			Find(&volumes).Error; err != nil {
			log.Fatalf("could not load bundle volumes: %v", err)
		}
		for _, volume := range volumes {
			volumeRange := &models.VolumeRange{FigureID: figure.ID, VolumeID: volume.ID}
			if err := db.Where(models.VolumeRange{FigureID: figure.ID, VolumeID: volume.ID}).
				FirstOrCreate(volumeRange).Error; err != nil {
				log.Fatalf("could not create volume range: %v", err)
			}
		}

		// A pending transaction per unclaimed figure, as the shop would
		// create at purchase time
		if figure.Status == models.FigureStatusUnclaimed {
			transaction := &models.FigureTransaction{
				FigureID:    figure.ID,
				PurchasedBy: demoUser.ID,
				Status:      models.TransactionStatusPending,
				ExpiresAt:   time.Now().AddDate(0, 0, 30),
			}
			if err := db.Where(models.FigureTransaction{
				FigureID: figure.ID,
				Status:   models.TransactionStatusPending,
			}).FirstOrCreate(transaction).Error; err != nil {
				log.Fatalf("could not create transaction: %v", err)
			}
			fmt.Printf("claim ticket for %q: %s\n", figure.Title, transaction.ID)
		}

		fmt.Printf("tap URL for %q: %s\n", figure.Title, nfc.TapURL(fmt.Sprintf("http://localhost:%d", cfg.HTTPPort), f.tagUID))
	}

	log.Println("seed complete")
}
