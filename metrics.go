package main

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/tedpearson/physio-importer/physio"
)

// InfluxConfig is the configuration for Influx/VictoriaMetrics.
type InfluxConfig struct {
	Host      string
	AuthToken string `yaml:"auth_token"`
	Org       string
	Bucket    string
}

type InfluxWriter struct {
	client influxdb2.Client
	api    api.WriteAPI
}

func NewInfluxWriter(config InfluxConfig) InfluxWriter {
	client := influxdb2.NewClient(config.Host, config.AuthToken)
	return InfluxWriter{
		client: client,
		api:    client.WriteAPI(config.Org, config.Bucket),
	}
}

func (i InfluxWriter) Close() {
	i.client.Close()
}

// WriteSession writes every retained channel sample plus the slice
// acquisition windows as points, and returns how many points it
// queued. day is midnight of the scan date: the logs carry no date,
// only ticks counted from midnight in 2.5 ms units.
func (i InfluxWriter) WriteSession(session *physio.Session, day time.Time) int {
	base := day.Add(time.Duration(session.FirstTime) * physio.TickDuration)
	return i.writeChannels(session, base) + i.writeAcquisitions(session, base)
}

func (i InfluxWriter) writeChannels(session *physio.Session, base time.Time) int {
	count := 0
	for name, samples := range session.Channels {
		for tick, value := range samples {
			i.api.WritePoint(influxdb2.NewPointWithMeasurement("physio").
				AddTag("session", session.UUID).
				AddField(name, int64(value)).
				SetTime(base.Add(time.Duration(tick) * physio.TickDuration)))
			count++
		}
	}
	return count
}

// writeAcquisitions marks each slice acquisition window with a 1 point
// at its start tick and a 0 point at its stop tick.
func (i InfluxWriter) writeAcquisitions(session *physio.Session, base time.Time) int {
	count := 0
	for vol := range session.Timing.Filled {
		for slice, filled := range session.Timing.Filled[vol] {
			if !filled {
				continue
			}
			i.api.WritePoint(influxdb2.NewPointWithMeasurement("physio").
				AddTag("session", session.UUID).
				AddField("acquisition", 1).
				SetTime(base.Add(time.Duration(session.Timing.Start[vol][slice]) * physio.TickDuration)))
			i.api.WritePoint(influxdb2.NewPointWithMeasurement("physio").
				AddTag("session", session.UUID).
				AddField("acquisition", 0).
				SetTime(base.Add(time.Duration(session.Timing.Stop[vol][slice]) * physio.TickDuration)))
			count += 2
		}
	}
	return count
}
