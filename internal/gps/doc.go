package gps

// Package gps turns a noisy line-oriented NMEA-0183 stream into a coherent,
// periodically-refreshed position/time fix.
//
// - Decode RMC/GGA/GSA/ZDA sentences (checksum-validated, noise-tolerant)
// - Extract location, UTC time and fix quality into a shared snapshot
// - Recover from transport timeouts and refused connections
// - Coordinate at-most-one-in-flight external refresh requests
