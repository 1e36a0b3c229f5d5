package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configEnvironment string
	configOutput      string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management and recommendations",
}

var configRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate recommended server configuration",
	Long: `Analyzes system hardware (CPU, RAM) and generates concurrency
settings for the grading server. Jobs spend most of their time waiting on
model completions, so the limits scale past the core count but stay bounded
by available memory.`,
	RunE: runConfigRecommend,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configRecommendCmd)

	configRecommendCmd.Flags().StringVarP(&configEnvironment, "environment", "e", "development",
		"Deployment environment: development, staging, production")
	configRecommendCmd.Flags().StringVarP(&configOutput, "output", "o", "text",
		"Output format: text, json, yaml")
}

type ConfigRecommendation struct {
	Hardware        HardwareInfo `json:"hardware" yaml:"hardware"`
	Recommendations ServerConfig `json:"recommendations" yaml:"recommendations"`
	Rationale       string       `json:"rationale" yaml:"rationale"`
}

type HardwareInfo struct {
	CPUModel     string `json:"cpu_model" yaml:"cpu_model"`
	CPUThreads   int    `json:"cpu_threads" yaml:"cpu_threads"`
	RAMBytes     uint64 `json:"ram_bytes" yaml:"ram_bytes"`
	RAMGB        string `json:"ram_gb" yaml:"ram_gb"`
	OS           string `json:"os" yaml:"os"`
	Architecture string `json:"architecture" yaml:"architecture"`
}

type ServerConfig struct {
	MaxConcurrentJobs int `json:"max_concurrent_jobs" yaml:"max_concurrent_jobs"`
	QueueSize         int `json:"queue_size" yaml:"queue_size"`
}

func runConfigRecommend(cmd *cobra.Command, args []string) error {
	hardware, err := detectHardware()
	if err != nil {
		return fmt.Errorf("failed to detect hardware: %w", err)
	}

	config := calculateRecommendations(hardware, configEnvironment)
	rationale := fmt.Sprintf(
		"Based on %d CPU threads and %s RAM in a %s environment: %d concurrent jobs with a queue of %d. "+
			"Grading jobs are dominated by model latency, so concurrency runs above the core count; "+
			"each in-flight job holds one downloaded document and one open model call.",
		hardware.CPUThreads, hardware.RAMGB, configEnvironment,
		config.MaxConcurrentJobs, config.QueueSize,
	)

	return outputRecommendation(ConfigRecommendation{
		Hardware:        hardware,
		Recommendations: config,
		Rationale:       rationale,
	}, configOutput)
}

func detectHardware() (HardwareInfo, error) {
	info := HardwareInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}

	threads, err := cpu.Counts(true)
	if err != nil {
		return info, err
	}
	info.CPUThreads = threads

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		info.CPUModel = cpuInfo[0].ModelName
	}

	vmem, err := mem.VirtualMemory()
	if err != nil {
		return info, err
	}
	info.RAMBytes = vmem.Total
	info.RAMGB = fmt.Sprintf("%.1f GB", float64(vmem.Total)/(1024*1024*1024))

	return info, nil
}

func calculateRecommendations(hw HardwareInfo, environment string) ServerConfig {
	// IO-bound workload: start from 2x threads.
	concurrent := hw.CPUThreads * 2

	// Keep roughly 256 MB of headroom per in-flight job.
	byMemory := int(hw.RAMBytes / (256 * 1024 * 1024))
	if byMemory > 0 && concurrent > byMemory {
		concurrent = byMemory
	}

	if environment == "development" {
		concurrent /= 2
	}
	if concurrent < 1 {
		concurrent = 1
	}
	if concurrent > 64 {
		concurrent = 64
	}

	queueSize := concurrent * 25
	if queueSize < 50 {
		queueSize = 50
	}

	return ServerConfig{
		MaxConcurrentJobs: concurrent,
		QueueSize:         queueSize,
	}
}

func outputRecommendation(rec ConfigRecommendation, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rec)

	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		return encoder.Encode(rec)

	case "text":
		fmt.Println("Hardware:")
		fmt.Printf("  CPU:  %s (%d threads)\n", rec.Hardware.CPUModel, rec.Hardware.CPUThreads)
		fmt.Printf("  RAM:  %s\n", rec.Hardware.RAMGB)
		fmt.Printf("  OS:   %s/%s\n", rec.Hardware.OS, rec.Hardware.Architecture)
		fmt.Println("\nRecommended settings:")
		fmt.Printf("  scheduler.max_concurrent_jobs: %d\n", rec.Recommendations.MaxConcurrentJobs)
		fmt.Printf("  scheduler.queue_size: %d\n", rec.Recommendations.QueueSize)
		fmt.Printf("\n%s\n", rec.Rationale)
		return nil

	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
