package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bitpixi2/lemonomics/internal/profile"
	"github.com/bitpixi2/lemonomics/internal/sim"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type playPayload struct {
	RunID    string         `json:"run_id"`
	Result   sim.GameResult `json:"result"`
	Progress sim.Progress   `json:"progress"`
}

type leaderboardPayload struct {
	Leaderboard []profile.LeaderboardRow `json:"leaderboard"`
}

func decodeInto(raw map[string]any, out any) error {
	body, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func renderToday(dailyRaw, weeklyRaw map[string]any) error {
	var daily sim.DailyCycle
	if err := decodeInto(dailyRaw, &daily); err != nil {
		return err
	}
	var weekly sim.WeeklyCycle
	if err := decodeInto(weeklyRaw, &weekly); err != nil {
		return err
	}

	accent.Printf("Market for %s\n", daily.Date)
	neutral.Printf("  Weather      %s\n", daily.Weather)
	neutral.Printf("  Event        %s\n", daily.Event)
	neutral.Printf("  Lemons       $%.2f\n", daily.LemonPrice)
	neutral.Printf("  Sugar        $%.2f\n", daily.SugarPrice)
	if daily.LoginBonus != sim.BonusNone {
		success.Printf("  Login bonus  %s\n", daily.LoginBonus)
	}
	accent.Printf("Festival week %d: %s\n", weekly.Week, weekly.Festival)
	return nil
}

func renderPlay(raw map[string]any) error {
	var out playPayload
	if err := decodeInto(raw, &out); err != nil {
		return err
	}
	r := out.Result

	accent.Printf("Day complete (%s, %s)\n", r.Weather, r.Event)
	neutral.Printf("  Cups sold  %d\n", r.CupsSold)
	if r.Profit >= 0 {
		success.Printf("  Profit     $%.2f\n", r.Profit)
	} else {
		danger.Printf("  Loss       $%.2f\n", -r.Profit)
	}
	neutral.Printf("  Streak     %d day(s)\n", r.Streak)
	for _, effect := range r.Effects {
		warn.Printf("  * %s\n", effect)
	}
	if r.Profit > 0 && r.Profit >= out.Progress.BestProfit {
		success.Println("  New personal best!")
	}
	return nil
}

func renderProfile(raw map[string]any) error {
	var prof sim.UserProfile
	if err := decodeInto(raw, &prof); err != nil {
		return err
	}
	accent.Println("Your stand")
	neutral.Printf("  Runs         %d\n", prof.Progress.TotalRuns)
	neutral.Printf("  Best day     $%.2f\n", prof.Progress.BestProfit)
	neutral.Printf("  Streak       %d day(s)\n", prof.Progress.CurrentStreak)
	neutral.Printf("  Last played  %s\n", prof.Progress.LastPlayDate)
	if prof.Powerups.UsedToday > 0 {
		warn.Printf("  Power-ups used today: %d\n", prof.Powerups.UsedToday)
	}
	return nil
}

func renderLeaderboard(raw map[string]any, pure bool) error {
	var out leaderboardPayload
	if err := decodeInto(raw, &out); err != nil {
		return err
	}
	if pure {
		accent.Println("Top stands (no paid power-ups)")
	} else {
		accent.Println("Top stands")
	}
	if len(out.Leaderboard) == 0 {
		printInfo("Nobody has played yet.")
		return nil
	}
	for i, row := range out.Leaderboard {
		neutral.Printf("  %2d. %-30s $%.2f\n", i+1, row.UserID, row.BestProfit)
	}
	return nil
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptFloat(label string, min float64) (float64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			printWarn("Enter a valid number.")
			continue
		}
		if v <= min {
			printWarn(fmt.Sprintf("Value must be > %.2f", min))
			continue
		}
		return v, nil
	}
}
