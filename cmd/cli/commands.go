package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	period string
	city   string
)

func init() {
	leaderboardCmd.Flags().StringVar(&period, "period", "all_time", "Leaderboard period (weekly, monthly, all_time)")
	leaderboardCmd.Flags().StringVar(&city, "city", "", "Optional city filter")
	rankCmd.Flags().StringVar(&period, "period", "all_time", "Leaderboard period (weekly, monthly, all_time)")
	rankCmd.Flags().StringVar(&city, "city", "", "Optional city filter")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(progressionCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var progressionCmd = &cobra.Command{
	Use:   "progression <user-id>",
	Short: "Show a player's progression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/progression?user_id=" + url.QueryEscape(args[0]))
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges <user-id>",
	Short: "Show a player's badges and badge progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/badges?user_id=" + url.QueryEscape(args[0]))
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/leaderboard?period=" + url.QueryEscape(period)
		if city != "" {
			endpoint += "&city=" + url.QueryEscape(city)
		}
		return performGetRequest(endpoint)
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank <user-id>",
	Short: "Show a player's leaderboard rank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/rank?user_id=" + url.QueryEscape(args[0]) + "&period=" + url.QueryEscape(period)
		if city != "" {
			endpoint += "&city=" + url.QueryEscape(city)
		}
		return performGetRequest(endpoint)
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Get the persistent application counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/counters")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
