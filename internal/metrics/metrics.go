// Package metrics accumulates per-run counters and finalizes them into
// rate statistics.
package metrics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Undefined marks a ratio whose denominator is zero.
var Undefined = math.Inf(1)

// NeverObserved is reported as the first-node-death round when no node died.
const NeverObserved = -1

// Result keys.
const (
	KeyPDR             = "pdr"
	KeyAvgDelay        = "avg_delay"
	KeyEnergyPerPacket = "energy_per_packet"
	KeyRoutingOverhead = "routing_overhead"
	KeyFNDRound        = "fnd_round"
)

// Outcome is the terminal state of one packet.
type Outcome string

const (
	Delivered     Outcome = "delivered"
	DroppedNoPath Outcome = "no_path"
	DroppedTTL    Outcome = "ttl"
	DroppedDead   Outcome = "dead"
	DroppedAttack Outcome = "selective_drop"
)

// Metrics are the raw accumulators of one run.
type Metrics struct {
	Generated      int
	Delivered      int
	TotalDelay     float64
	TotalEnergy    float64
	ControlPackets int
	FNDRound       *int
	Outcomes       map[Outcome]int
}

// New returns empty accumulators.
func New() *Metrics {
	return &Metrics{Outcomes: make(map[Outcome]int)}
}

// Record counts the terminal outcome of a packet. Delivered packets add
// their hop count to the total delay.
func (m *Metrics) Record(o Outcome, hops int) {
	m.Outcomes[o]++
	if o == Delivered {
		m.Delivered++
		m.TotalDelay += float64(hops)
	}
}

// ObserveDeath records round as the first-node-death round once.
func (m *Metrics) ObserveDeath(round int) {
	if m.FNDRound == nil {
		r := round
		m.FNDRound = &r
	}
}

// Finalize converts the accumulators into rate statistics.
// Energy per packet includes energy spent on packets that were dropped.
func (m *Metrics) Finalize() Result {
	res := Result{
		PDR:             0,
		AvgDelay:        Ratio(Undefined),
		EnergyPerPacket: Ratio(Undefined),
		RoutingOverhead: Ratio(Undefined),
		FNDRound:        NeverObserved,
	}
	if m.Generated > 0 {
		res.PDR = float64(m.Delivered) / float64(m.Generated)
	}
	if m.Delivered > 0 {
		d := float64(m.Delivered)
		res.AvgDelay = Ratio(m.TotalDelay / d)
		res.EnergyPerPacket = Ratio(m.TotalEnergy / d)
		res.RoutingOverhead = Ratio(float64(m.ControlPackets) / d)
	}
	if m.FNDRound != nil {
		res.FNDRound = float64(*m.FNDRound)
	}
	return res
}

// Result holds the finalized statistics of one protocol run.
type Result struct {
	PDR             float64 `json:"pdr"`
	AvgDelay        Ratio   `json:"avg_delay"`
	EnergyPerPacket Ratio   `json:"energy_per_packet"`
	RoutingOverhead Ratio   `json:"routing_overhead"`
	FNDRound        float64 `json:"fnd_round"`
}

// Map returns the result keyed by metric name.
func (r Result) Map() map[string]float64 {
	return map[string]float64{
		KeyPDR:             r.PDR,
		KeyAvgDelay:        float64(r.AvgDelay),
		KeyEnergyPerPacket: float64(r.EnergyPerPacket),
		KeyRoutingOverhead: float64(r.RoutingOverhead),
		KeyFNDRound:        r.FNDRound,
	}
}

// Ratio is a statistic that may be Undefined. It encodes Undefined as JSON
// null.
type Ratio float64

// Defined reports whether the ratio had a non-zero denominator.
func (r Ratio) Defined() bool {
	return !math.IsInf(float64(r), 1)
}

// String formats the ratio, using "undefined" for Undefined.
func (r Ratio) String() string {
	if !r.Defined() {
		return "undefined"
	}
	return strconv.FormatFloat(float64(r), 'f', 4, 64)
}

// MarshalJSON implements json.Marshaler.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ratio) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*r = Ratio(Undefined)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}
