package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/tedpearson/physio-importer/physio"
)

var (
	version   = "development"
	goVersion = "unknown"
	buildDate = "unknown"
)

func main() {
	path := flag.String("path", ".", "Path to directory of physio logs")
	configFile := flag.String("config", "physio-importer.yaml", "Config file")
	stateFile := flag.String("state-file", "physio-importer.state.yaml", "State file")
	dryRun := flag.Bool("dry-run", false, "Don't insert into the database")
	versionFlag := flag.Bool("v", false, "Show version and exit")
	flag.Parse()
	fmt.Printf("physio-importer version %s built on %s with %s\n", version, buildDate, goVersion)
	if *versionFlag {
		os.Exit(0)
	}

	influxConfig := readConfig(*configFile)
	influxWriter := NewInfluxWriter(influxConfig)
	state := readState(*stateFile)
	bases, err := findSessions(*path)
	if err != nil {
		panic(err)
	}
	pointCount := 0
	sessionCount := 0
	for _, base := range bases {
		session, err := physio.ReadSession(base, physio.LogVersion)
		if err != nil {
			fmt.Printf("Error reading %s: %s\n", base, err)
			continue
		}
		if state.imported(session.UUID) {
			continue
		}
		reportChannels(session)
		if !*dryRun {
			pointCount += influxWriter.WriteSession(session, scanDay(base))
		}
		state.ImportedSessions = append(state.ImportedSessions, session.UUID)
		sessionCount++
	}
	if !*dryRun {
		writeState(state, *stateFile)
	}
	fmt.Printf("\nTotal new data found: %s points in %s sessions.\n",
		humanize.Comma(int64(pointCount)), humanize.Comma(int64(sessionCount)))
	influxWriter.Close()
}

func readConfig(configFile string) InfluxConfig {
	cf, err := os.ReadFile(configFile)
	if err != nil {
		panic(fmt.Sprintf("Error reading config file %s: %s", configFile, err))
	}
	var config InfluxConfig
	err = yaml.Unmarshal(cf, &config)
	if err != nil {
		panic(fmt.Sprintf("Error loading config from %s: %s", configFile, err))
	}
	return config
}

// reportChannels logs how much signal each retained channel carries.
func reportChannels(session *physio.Session) {
	names := make([]string, 0, len(session.Channels))
	for name := range session.Channels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		samples := session.Channels[name]
		values := make([]float64, len(samples))
		for i, v := range samples {
			values[i] = float64(v)
		}
		log.Printf("  %s: %s samples, mean %.1f",
			name, humanize.Comma(int64(len(samples))), stat.Mean(values, nil))
	}
}

// scanDay returns midnight of the day the session was recorded. The
// logs carry no date, so the info file's modification time supplies
// the day.
func scanDay(base string) time.Time {
	t := time.Now()
	if info, err := os.Stat(physio.KindInfo.Path(base)); err == nil {
		t = info.ModTime()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
