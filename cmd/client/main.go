package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inhabitapp/inhabit/internal/client/api"
	"github.com/inhabitapp/inhabit/internal/client/session"
	"github.com/inhabitapp/inhabit/internal/client/store"
	"github.com/inhabitapp/inhabit/internal/config"
	"github.com/inhabitapp/inhabit/internal/export"
	"github.com/inhabitapp/inhabit/internal/logger"
	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/service"
	"github.com/inhabitapp/inhabit/internal/stats"
)

var (
	version   string
	buildDate string
)

// app bundles the client's state for the shell loop.
type app struct {
	client  *api.Client
	session *session.Session
	store   *store.Store
	cal     *store.Calendar
	scanner *bufio.Scanner
}

func (a *app) prompt(label string) string {
	fmt.Printf("%s: ", label)
	if !a.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(a.scanner.Text())
}

func (a *app) reload(ctx context.Context) {
	if err := a.store.Load(ctx); err != nil {
		fmt.Println("load failed:", err)
	}
	if a.store.Demo() {
		fmt.Println("(demo mode: showing sample habits)")
	}
}

func (a *app) login(ctx context.Context) {
	email := a.prompt("email")
	password := a.prompt("password")
	user, err := a.client.Login(ctx, email, password)
	if err != nil {
		fmt.Println("login failed:", err)
		return
	}
	_ = a.session.Save()
	fmt.Printf("Welcome back, %s\n", user.Name)
	a.reload(ctx)
}

func (a *app) register(ctx context.Context) {
	name := a.prompt("name")
	email := a.prompt("email")
	password := a.prompt("password")
	user, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		fmt.Println("registration failed:", err)
		return
	}
	_ = a.session.Save()
	fmt.Printf("Welcome, %s\n", user.Name)
	a.reload(ctx)
}

func (a *app) logout(ctx context.Context) {
	if err := a.client.Logout(ctx); err != nil {
		fmt.Println("logout:", err)
	}
	_ = a.session.Save()
	a.reload(ctx)
	fmt.Println("Logged out")
}

func (a *app) list(category string) {
	habits := a.store.List(store.ListOptions{Category: category, SortBy: "title"})
	if len(habits) == 0 {
		fmt.Println("No habits yet. Try 'add'.")
		return
	}
	today := time.Now().Format(models.DateFormat)
	for _, h := range habits {
		mark := " "
		if h.CompletedOn(today) {
			mark = "x"
		}
		fmt.Printf("[%s] %-24s streak %d (best %d)", mark, h.Title, h.CurrentStreak, h.LongestStreak)
		if h.Category != "" {
			fmt.Printf("  #%s", h.Category)
		}
		fmt.Printf("  id=%s\n", h.ID)
	}
}

func (a *app) today() {
	habits := a.store.List(store.ListOptions{})
	now := time.Now()

	for _, day := range stats.WeekSummary(habits, now) {
		marker := "  "
		if day.IsToday {
			marker = "> "
		}
		fmt.Printf("%s%s %s  %d/%d\n", marker, day.Day, day.Date, day.Completed, day.Total)
	}

	fmt.Println()
	for i := range habits {
		history := stats.BuildCompletionHistory(&habits[i], now, 14)
		var bar strings.Builder
		for _, d := range history {
			if d.Completed {
				bar.WriteByte('#')
			} else {
				bar.WriteByte('.')
			}
		}
		fmt.Printf("%-24s %s  %.0f%%\n", habits[i].Title, bar.String(), stats.CompletionRate(history))
	}
}

func (a *app) add(ctx context.Context) {
	input := service.CreateInput{
		Title:       a.prompt("title"),
		Description: a.prompt("description (optional)"),
		Category:    a.prompt("category (optional)"),
	}
	habit, err := a.store.Create(ctx, input)
	if err != nil {
		fmt.Println("add failed:", err)
		return
	}
	fmt.Printf("Added %q (id=%s)\n", habit.Title, habit.ID)
}

func (a *app) edit(ctx context.Context, id string) {
	patch := service.UpdateInput{}
	if v := a.prompt("new title (blank keeps)"); v != "" {
		patch.Title = &v
	}
	if v := a.prompt("new description (blank keeps)"); v != "" {
		patch.Description = &v
	}
	if v := a.prompt("new category (blank keeps)"); v != "" {
		patch.Category = &v
	}
	habit, err := a.store.Update(ctx, id, patch)
	if err != nil {
		fmt.Println("edit failed:", err)
		return
	}
	fmt.Printf("Updated %q\n", habit.Title)
}

func (a *app) toggle(ctx context.Context, id, date string) {
	habit, err := a.store.ToggleCompletion(ctx, id, date)
	if err != nil {
		if errors.Is(err, store.ErrToggleInFlight) {
			fmt.Println("A toggle for this habit is still pending, try again")
			return
		}
		fmt.Println("toggle failed:", err)
		return
	}
	fmt.Printf("%s: streak %d (best %d)\n", habit.Title, habit.CurrentStreak, habit.LongestStreak)
}

func (a *app) calendar(ctx context.Context, month string) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		fmt.Println("Usage: calendar <YYYY-MM>")
		return
	}
	end := start.AddDate(0, 1, -1)

	habits := a.store.List(store.ListOptions{})
	if a.store.Demo() {
		a.cal.LoadLocal(habits, start, end)
	} else if err := a.cal.FetchRange(ctx, habits, start, end); err != nil {
		fmt.Println("calendar fetch failed:", err)
		return
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(models.DateFormat)
		s := a.cal.StatsForDate(date, len(habits))
		if s.Completed == 0 {
			continue
		}
		fmt.Printf("%s  %d/%d (%.0f%%)\n", date, s.Completed, s.Total, s.CompletionRate)
	}
}

func (a *app) export(ctx context.Context, format, path string) {
	habits := a.store.List(store.ListOptions{IncludeArchived: true})
	userName := "demo"
	if u := a.session.CurrentUser(); u != nil {
		userName = u.Name
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Println("export failed:", err)
		return
	}
	defer f.Close()

	switch format {
	case "csv":
		err = export.WriteCSV(f, habits, time.Now())
	case "json":
		err = export.WriteJSON(f, userName, habits, time.Now())
	default:
		fmt.Println("Usage: export csv|json <file>")
		return
	}
	if err != nil {
		fmt.Println("export failed:", err)
		return
	}
	fmt.Printf("Exported %d habits to %s\n", len(habits), path)
}

// repl runs the interactive shell loop.
func (a *app) repl(ctx context.Context) {
	for {
		fmt.Print("inhabit> ")
		if !a.scanner.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(a.scanner.Text()))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Commands: help, login, register, logout, whoami, list [category],")
			fmt.Println("  today, add, edit <id>, rm <id>, toggle <id> [date], archive <id>,")
			fmt.Println("  calendar <YYYY-MM>, categories, export csv|json <file>, exit")
		case "login":
			a.login(ctx)
		case "register":
			a.register(ctx)
		case "logout":
			a.logout(ctx)
		case "whoami":
			if u := a.session.CurrentUser(); u != nil {
				fmt.Printf("%s <%s>\n", u.Name, u.Email)
			} else {
				fmt.Println("Not logged in")
			}
		case "list":
			category := ""
			if len(args) > 1 {
				category = args[1]
			}
			a.list(category)
		case "today":
			a.today()
		case "add":
			a.add(ctx)
		case "edit":
			if len(args) < 2 {
				fmt.Println("Usage: edit <id>")
				continue
			}
			a.edit(ctx, args[1])
		case "rm":
			if len(args) < 2 {
				fmt.Println("Usage: rm <id>")
				continue
			}
			if err := a.store.Remove(ctx, args[1]); err != nil {
				fmt.Println("rm failed:", err)
			} else {
				fmt.Println("Habit removed")
			}
		case "toggle":
			if len(args) < 2 {
				fmt.Println("Usage: toggle <id> [YYYY-MM-DD]")
				continue
			}
			date := ""
			if len(args) > 2 {
				date = args[2]
			}
			a.toggle(ctx, args[1], date)
		case "archive":
			if len(args) < 2 {
				fmt.Println("Usage: archive <id>")
				continue
			}
			habit, err := a.store.SetArchived(ctx, args[1], true)
			if err != nil {
				fmt.Println("archive failed:", err)
			} else {
				fmt.Printf("Archived %q\n", habit.Title)
			}
		case "calendar":
			if len(args) < 2 {
				fmt.Println("Usage: calendar <YYYY-MM>")
				continue
			}
			a.calendar(ctx, args[1])
		case "categories":
			for _, c := range a.store.Categories(ctx) {
				fmt.Println(c)
			}
		case "export":
			if len(args) < 3 {
				fmt.Println("Usage: export csv|json <file>")
				continue
			}
			a.export(ctx, args[1], args[2])
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func main() {
	var showVer bool
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	options := config.Parse()

	if showVer {
		fmt.Printf("Inhabit Client\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Warn"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}

	sess := session.New(options.TokenFile)
	if err := sess.Load(); err != nil {
		log.Log.Warn("could not load stored session", zap.Error(err))
	}

	client := api.New(options.BaseURL, sess)

	seed := options.SampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a := &app{
		client:  client,
		session: sess,
		store:   store.New(client, sess, log.Log, seed),
		cal:     store.NewCalendar(client, log.Log),
		scanner: bufio.NewScanner(os.Stdin),
	}

	ctx := context.Background()
	a.reload(ctx)
	a.repl(ctx)
}
