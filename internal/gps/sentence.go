package gps

import (
	"encoding/hex"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

type Kind int

const (
	// KindInvalid marks lines that are not NMEA at all: missing '$' sentinel,
	// missing or mismatched checksum. Frequent on a noisy wire, never fatal.
	KindInvalid Kind = iota

	// KindUnparsed marks well-framed NMEA that could not be used: an
	// unsupported sentence identifier or a structural parse failure.
	KindUnparsed

	KindRMC
	KindGGA
	KindGSA
	KindZDA
)

// Sentence is the decoded form of one raw line. Exactly one of the typed
// fields is meaningful, selected by Kind.
type Sentence struct {
	Kind Kind

	RMC nmea.RMC
	GGA nmea.GGA
	GSA nmea.GSA
	ZDA nmea.ZDA

	// Reason explains a KindUnparsed outcome.
	Reason string
}

// DecodeLine decodes a raw text line into a Sentence. It never fails: wire
// noise decodes to KindInvalid, well-framed but unusable NMEA to KindUnparsed.
func DecodeLine(line string) Sentence {
	line = strings.TrimSpace(line)

	typ, ok := scanFrame(line)
	if !ok {
		return Sentence{Kind: KindInvalid}
	}

	switch typ {
	case "RMC", "GGA", "GSA", "ZDA":
	default:
		return Sentence{Kind: KindUnparsed, Reason: "unsupported sentence " + typ}
	}

	parsed, err := nmea.Parse(line)
	if err != nil {
		return Sentence{Kind: KindUnparsed, Reason: err.Error()}
	}

	switch frame := parsed.(type) {
	case nmea.RMC:
		return Sentence{Kind: KindRMC, RMC: frame}
	case nmea.GGA:
		return Sentence{Kind: KindGGA, GGA: frame}
	case nmea.GSA:
		return Sentence{Kind: KindGSA, GSA: frame}
	case nmea.ZDA:
		return Sentence{Kind: KindZDA, ZDA: frame}
	default:
		return Sentence{Kind: KindUnparsed, Reason: "unexpected sentence " + parsed.DataType()}
	}
}

// scanFrame validates NMEA framing ($...*hh) and the XOR checksum, and
// returns the three-letter sentence identifier.
func scanFrame(line string) (string, bool) {
	if !strings.HasPrefix(line, "$") {
		return "", false
	}
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return "", false
	}
	payload := line[1:star]
	ck := strings.TrimSpace(line[star+1:])
	if len(ck) < 2 {
		return "", false
	}
	want, err := hex.DecodeString(ck[:2])
	if err != nil || len(want) != 1 {
		return "", false
	}
	got := byte(0)
	for i := 0; i < len(payload); i++ {
		got ^= payload[i]
	}
	if got != want[0] {
		return "", false
	}

	comma := strings.IndexByte(payload, ',')
	typeField := payload
	if comma != -1 {
		typeField = payload[:comma]
	}
	if len(typeField) < 3 {
		return "", false
	}
	// Accept any talker prefix (GP, GN, GL, ...); identify by last 3 chars.
	return strings.ToUpper(typeField[len(typeField)-3:]), true
}
