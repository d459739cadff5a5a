package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/cryptox"
	"github.com/lifeisskill/lisk-go/internal/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates. An online login is tried
// first; when the backend is unreachable it falls back to offline login
// against the locally cached credentials.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer cryptox.WipeByteArray(password)

	user, err := a.service.Login(ctx, email, string(password))
	if errors.Is(err, common.ErrUnavailable) {
		printlnFn("Server unreachable, trying offline login...")
		user, err = a.service.OfflineLogin(ctx, email, string(password))
	}
	if err != nil {
		return err
	}

	printlnFn("Welcome,", user.Nick+"!")
	return nil
}

// Logout ends the session, keeping cached credentials for offline re-login.
func (a *App) Logout(ctx context.Context) error {
	if err := a.service.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}

// Sync runs one full refresh pass.
func (a *App) Sync(ctx context.Context) error {
	if err := a.service.FetchNewDataIfNecessary(ctx); err != nil {
		return err
	}
	printlnFn("Data is up to date.")
	return nil
}

// Points lists the user's earned points, newest first as delivered.
func (a *App) Points(ctx context.Context) error {
	points := a.userPoints.GetAll()
	if len(points) == 0 {
		printlnFn("No points yet.")
		return nil
	}
	for _, p := range points {
		mark := ""
		if !p.DoesPointCount {
			mark = " (not counted)"
		}
		printlnFn(fmt.Sprintf("%s  %-30s %4d%s", p.Timestamp.Format("2006-01-02"), p.Name, p.Value, mark))
	}
	return nil
}

// Total prints the point total of one category (the main one by default).
func (a *App) Total(ctx context.Context, args []string) error {
	categoryID, err := a.resolveCategory(args)
	if err != nil {
		return err
	}
	printlnFn("Total:", a.userPoints.TotalPoints(categoryID))
	return nil
}

// Rank prints the leaderboard of one category (the main one by default).
func (a *App) Rank(ctx context.Context, args []string) error {
	categoryID, err := a.resolveCategory(args)
	if err != nil {
		return err
	}
	ranking := a.rank.ByCategory(categoryID)
	if ranking == nil {
		printlnFn("No ranking data for", categoryID+".")
		return nil
	}
	for _, e := range ranking.Entries {
		printlnFn(fmt.Sprintf("%3d. %-20s %6d", e.Order, e.Nick, e.Points))
	}
	return nil
}

// Near lists the closest active points to the given position.
//
// Usage: near <lat> <lon> [count]
func (a *App) Near(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: near <lat> <lon> [count]")
		return nil
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude: %w", err)
	}
	count := 5
	if len(args) > 2 {
		if count, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid count: %w", err)
		}
	}

	loc := models.Location{Latitude: lat, Longitude: lon}
	a.genericPoints.UpdateLocation(&loc)

	points := a.genericPoints.Closest(loc, count)
	if len(points) == 0 {
		printlnFn("No points nearby.")
		return nil
	}
	for _, p := range points {
		printlnFn(fmt.Sprintf("%-30s %4d  (%.5f, %.5f)", p.Name, p.Value, p.Location.Latitude, p.Location.Longitude))
	}
	return nil
}

// Scan submits a scanned code; without connectivity it is queued.
//
// Usage: scan <code> <lat> <lon>
func (a *App) Scan(ctx context.Context, args []string) error {
	if len(args) < 3 {
		printlnFn("Usage: scan <code> <lat> <lon>")
		return nil
	}
	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude: %w", err)
	}

	status, err := a.scans.HandleScannedPoint(ctx, &models.ScannedPoint{
		Code:       args[0],
		Source:     models.SourceText,
		Location:   &models.Location{Latitude: lat, Longitude: lon},
		CapturedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	printlnFn("Scan", status.String()+".")
	return nil
}

// Queue lists scans still waiting for delivery.
func (a *App) Queue(ctx context.Context) error {
	pending, err := a.scans.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		printlnFn("Queue is empty.")
		return nil
	}
	for _, p := range pending {
		printlnFn(fmt.Sprintf("%s  %s (%s)", p.CapturedAt.Format(time.RFC3339), p.Code, p.Source))
	}
	return nil
}

func (a *App) resolveCategory(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if main := a.categories.MainCategory(); main != nil {
		return main.ID, nil
	}
	return "", common.ErrLocalDataNotAvailable
}
