package gps

import (
	"fmt"
	"testing"
)

func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

func TestDecodeLine_RMC(t *testing.T) {
	line := nmeaLine("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	s := DecodeLine(line)
	if s.Kind != KindRMC {
		t.Fatalf("kind=%v want KindRMC (reason=%q)", s.Kind, s.Reason)
	}
	if s.RMC.Validity != "A" {
		t.Fatalf("validity=%q want A", s.RMC.Validity)
	}
}

func TestDecodeLine_AcceptsGNTalker(t *testing.T) {
	line := nmeaLine("GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
	s := DecodeLine(line)
	if s.Kind != KindGGA {
		t.Fatalf("kind=%v want KindGGA (reason=%q)", s.Kind, s.Reason)
	}
}

func TestDecodeLine_CorruptedChecksumIsInvalid(t *testing.T) {
	good := nmeaLine("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	bad := good[:len(good)-2] + "00"
	s := DecodeLine(bad)
	if s.Kind != KindInvalid {
		t.Fatalf("kind=%v want KindInvalid", s.Kind)
	}
}

func TestDecodeLine_GarbageIsInvalid(t *testing.T) {
	for _, line := range []string{"", "garbage with no sentinel", "$GPRMC,no,checksum", "$*", "\x00\xff\x7e"} {
		if s := DecodeLine(line); s.Kind != KindInvalid {
			t.Fatalf("line=%q kind=%v want KindInvalid", line, s.Kind)
		}
	}
}

func TestDecodeLine_UnsupportedTypeIsUnparsed(t *testing.T) {
	line := nmeaLine("GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00")
	s := DecodeLine(line)
	if s.Kind != KindUnparsed {
		t.Fatalf("kind=%v want KindUnparsed", s.Kind)
	}
	if s.Reason == "" {
		t.Fatalf("expected a reason")
	}
}

func TestDecodeLine_MalformedRMCIsUnparsed(t *testing.T) {
	// Framing and checksum are fine, but the field set is truncated.
	line := nmeaLine("GPRMC,123519")
	s := DecodeLine(line)
	if s.Kind != KindUnparsed {
		t.Fatalf("kind=%v want KindUnparsed", s.Kind)
	}
	if s.Reason == "" {
		t.Fatalf("expected a reason")
	}
}

func TestDecodeLine_TrimsCRLF(t *testing.T) {
	line := nmeaLine("GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1") + "\r\n"
	s := DecodeLine(line)
	if s.Kind != KindGSA {
		t.Fatalf("kind=%v want KindGSA (reason=%q)", s.Kind, s.Reason)
	}
}
