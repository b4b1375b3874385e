package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/database"
	"github.com/eventhub/eventhub-backend/internal/logger"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/eventhub/eventhub-backend/internal/service"
)

const seedPassword = "eventhub123"

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	media := service.NewMediaService(cfg.MaxUploadBytes)
	authService := service.NewAuthService(adminRepo, userRepo, hasher, tokens, nil, log)
	eventService := service.NewEventService(eventRepo, adminRepo, userRepo, nil, media, cfg.EventLocation, log)
	eventService.EnforceMinAge(cfg.EnforceMinAge)

	fmt.Println("=== Seeding Events ===")

	organizers := []string{"Aarav Mehta", "Diya Kapoor"}
	var adminIDs []int
	for i, name := range organizers {
		email := fmt.Sprintf("organizer%d@eventhub.local", i+1)
		admin, _, err := authService.SignupAdmin(ctx, model.AdminSignupRequest{Name: name, Email: email, Password: seedPassword})
		if errors.Is(err, repository.ErrDuplicateEmail) {
			admin, _, err = authService.SigninAdmin(ctx, model.SigninRequest{Email: email, Password: seedPassword})
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to prepare organizer")
		}
		adminIDs = append(adminIDs, admin.ID)
	}

	attendees := []struct {
		name string
		age  int
	}{
		{"Kabir Singh", 24}, {"Ananya Rao", 17}, {"Rohan Das", 31}, {"Meera Nair", 19},
		{"Ishaan Verma", 15}, {"Priya Iyer", 28}, {"Vikram Joshi", 42}, {"Sneha Pillai", 22},
	}
	var userIDs []int
	for i, a := range attendees {
		email := fmt.Sprintf("attendee%d@eventhub.local", i+1)
		user, _, err := authService.SignupUser(ctx, model.UserSignupRequest{Name: a.name, Email: email, Password: seedPassword, Age: a.age})
		if errors.Is(err, repository.ErrDuplicateEmail) {
			user, _, err = authService.SigninUser(ctx, model.SigninRequest{Email: email, Password: seedPassword})
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to prepare attendee")
		}
		userIDs = append(userIDs, user.ID)
	}

	forms := []model.EventForm{
		{EventName: "Indie Night Live", Description: "Three bands, one stage.", Venue: "Blue Frog, Mumbai", Price: 799, Category: "music", MinAge: 18},
		{EventName: "Go Meetup", Description: "Talks on concurrency patterns.", Venue: "WeWork, Bengaluru", Price: 0, Category: "tech", Contact: "meetup@eventhub.local"},
		{EventName: "Stand-up Sunday", Description: "An evening of comedy.", Venue: "Canvas Laugh Club, Noida", Price: 499, Category: "comedy", MinAge: 16},
		{EventName: "City Marathon Expo", Description: "Gear, nutrition and route talks.", Venue: "Jawaharlal Nehru Stadium, Delhi", Price: 150, Category: "sports"},
		{EventName: "Watercolour Workshop", Description: "Beginner friendly, materials provided.", Venue: "Kala Ghoda, Mumbai", Price: 1200, Category: "art"},
		{EventName: "Jazz by the Bay", Description: "Open-air jazz evening.", Venue: "Marine Drive, Mumbai", Price: 999, Category: "music", MinAge: 21},
	}

	cover, err := media.Encode(placeholderImage())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode placeholder image")
	}

	start := time.Now().In(cfg.EventLocation).Truncate(time.Hour)
	successCount := 0
	for i, form := range forms {
		form.Time = start.Add(time.Duration(i+1) * 72 * time.Hour).Format(time.RFC3339)
		organizer := model.Principal{ID: adminIDs[i%len(adminIDs)], Kind: model.PrincipalAdmin}

		event, err := eventService.FromForm(form, cover)
		if err != nil {
			log.Fatal().Err(err).Str("event", form.EventName).Msg("Invalid seed event")
		}
		if err := eventService.Create(ctx, organizer, event); err != nil {
			fmt.Printf("Error creating event %s: %v\n", form.EventName, err)
			continue
		}
		successCount++

		// Spread enrollments so the trending order is not flat.
		for j := 0; j < len(userIDs)-i; j++ {
			attendee := model.Principal{ID: userIDs[j], Kind: model.PrincipalUser}
			if _, err := eventService.Enroll(ctx, attendee, event.EventID); err != nil && !errors.Is(err, service.ErrAgeRestricted) {
				fmt.Printf("Error enrolling user %d in %s: %v\n", userIDs[j], form.EventName, err)
			}
		}
	}

	fmt.Printf("\nSeed completed! Created %d/%d events. Accounts use password %q.\n", successCount, len(forms), seedPassword)
}

// placeholderImage renders a small solid PNG used as every seeded event's cover.
func placeholderImage() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
