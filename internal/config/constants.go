// Package config holds the fixed tuning constants that spec.md pins by name,
// mirroring the teacher's single constants.go block.
package config

import "time"

// Global scale and grid constants (§6).
const (
	MapGameScale = 1.0
	MapTileSize  = 32.0
	NavGridSize  = 128

	AggroRange = MapTileSize * 4

	NPCLoiterTimer       = 5 * time.Second
	NPCAttackAnim        = 500 * time.Millisecond
	NPCPathRecalc        = 50 * time.Millisecond
	FastMeleeCharge      = 300 * time.Millisecond
	FastMeleeSlash       = 300 * time.Millisecond
	PlayerBaseSpeed      = 3e-4 // world units per millisecond
	TickRateHz           = 40
	TickInterval         = time.Second / TickRateHz
	TransportServiceCap  = time.Millisecond
	MaxPeers             = 32
	ServerPort           = 7777
	ProtocolVersionMajor = 1
	ProtocolVersionMinor = 0
	ProtocolVersionPatch = 0
)

// PlayerScale, SeedNPCScale and MeleeAttackHalf (the scale given to a melee
// ATTACK object) mirror the fixed scale values named in §4.8.
const (
	PlayerScale     = 0.1
	SeedNPCScale    = 0.1
	MeleeAttackHalf = 0.125
)

// SeedNPCID is reserved for the server's initial seeded roster entry.
const SeedNPCID uint32 = 1

// FirstDynamicID is the first id handed to a dynamically created object.
const FirstDynamicID uint32 = 2
