package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusServerURL string

var statusCmd = &cobra.Command{
	Use:   "status <job_id>",
	Short: "Show the recorded status of a job",
	Long: `Queries a running grader server for the status of a job, e.g.
blueprint_<assignment_id> or grade_<submission_id>.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusServerURL, "server", "http://localhost:8080", "grader server URL")
}

func runStatus(cmd *cobra.Command, args []string) error {
	jobID := args[0]
	url := strings.TrimRight(statusServerURL, "/") + "/jobs/" + jobID + "/status"

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if key := viper.GetString("api_key"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("no status recorded for job %s", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse server response: %w", err)
	}

	if IsJSONOutput() {
		fmt.Println(string(body))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")
	table.Append("Job ID", result["job_id"])
	table.Append("Status", result["status"])
	table.Render()
	return nil
}
