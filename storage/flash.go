// Package storage implements a two-page, wear-rotated key/value store
// over raw flash, used to persist the subset of the object dictionary
// that should survive a power cycle (acceleration, current settings,
// PSD gains, the velocity-feedback-enabled flag).
//
// Ported from original_source/Software/sm4-firmware/src/blocks/eeprom.rs.
package storage

import (
	"encoding/binary"
	"errors"
	"math"
)

// Flash abstracts the raw NOR flash device: byte-addressable reads,
// page-granularity erase, and word-at-a-time programming. A real
// firmware target backs this with the MCU's flash controller; host
// tests back it with an in-memory byte slice (see flash_test.go).
type Flash interface {
	// Read returns the live contents of the whole flash region.
	Read() []byte
	// Program writes data at the given offset. The region must
	// already be erased (all 0xFF) at that offset, the same
	// write-once-per-erase-cycle constraint real NOR flash has.
	Program(offset int, data []byte) error
	// Erase erases the given sector number (1-indexed, matching the
	// donor's Page.sector() values of 1 and 2).
	Erase(sector uint8) error
}

// page describes one of the two wear-rotated storage pages. Ported
// from eeprom.rs's Page enum; addresses are relative to the start of
// the flash region (FLASH_START is subtracted up front here instead of
// at every call site).
type page struct {
	id            uint8
	startAddress  int
	sector        uint8
}

var page0 = page{id: 0, startAddress: 0x4000, sector: 1}
var page1 = page{id: 1, startAddress: 0x8000, sector: 2}

func (p page) next() page {
	if p.id == 0 {
		return page1
	}
	return page0
}

const (
	pageSize         = 0x3fff
	headerSize       = 2
	cellSize         = 6
	cellCount        = (pageSize - headerSize) / cellSize
	activePageMarker = 0xbeef
	emptyKey         = 0xffff
)

// ErrNoActivePage is returned by operations that require a formatted
// store when neither page carries the active-page marker.
var ErrNoActivePage = errors.New("storage: no active page found")

// Store is the wear-rotated key/value store over two flash pages.
type Store struct {
	flash Flash
}

// New wraps a Flash device. Call Init before first use.
func New(flash Flash) *Store {
	return &Store{flash: flash}
}

// Init finds the active page, formatting the store if neither page
// carries the marker (first boot on blank flash). Ported from
// Storage::init.
func (s *Store) Init() error {
	if _, ok := s.findActivePage(); ok {
		return nil
	}
	return s.Erase()
}

// Erase erases both pages and marks page 0 active, ported from
// Storage::erase.
func (s *Store) Erase() error {
	if err := s.flash.Erase(page0.sector); err != nil {
		return err
	}
	if err := s.flash.Erase(page1.sector); err != nil {
		return err
	}
	return s.markActivePage(page0)
}

// Read returns the stored value for key, or (0, false) if absent.
// Ported from Storage::read / find_by_key, which scans the active
// page from the highest cell index down so the most recently written
// value for a key wins.
func (s *Store) Read(key uint16) (uint32, bool) {
	active, ok := s.findActivePage()
	if !ok {
		return 0, false
	}
	return s.findByKey(active, key)
}

// ReadF32 is Read reinterpreting the stored 32-bit word as an IEEE-754
// float, ported from Storage::read_f32.
func (s *Store) ReadF32(key uint16) (float32, bool) {
	raw, ok := s.Read(key)
	if !ok {
		return 0, false
	}
	return math.Float32frombits(raw), true
}

// Write stores value under key, migrating to the other page first if
// the active page's last cell is already occupied. Ported from
// Storage::write.
func (s *Store) Write(key uint16, value uint32) error {
	if err := s.moveToNewPageIfNeeded(); err != nil {
		return err
	}
	active, ok := s.findActivePage()
	if !ok {
		return ErrNoActivePage
	}
	for cell := 0; cell < cellCount; cell++ {
		cellKey, _ := s.cellKeyValue(active, cell)
		if cellKey == emptyKey {
			return s.writeCell(active, cell, key, value)
		}
	}
	return nil
}

// WriteF32 stores an IEEE-754 float, ported from Storage::write_f32.
func (s *Store) WriteF32(key uint16, value float32) error {
	return s.Write(key, math.Float32bits(value))
}

func (s *Store) findActivePage() (page, bool) {
	for _, p := range []page{page0, page1} {
		if s.readPageHeader(p) == activePageMarker {
			return p, true
		}
	}
	return page{}, false
}

func (s *Store) markActivePage(p page) error {
	var header [2]byte
	binary.LittleEndian.PutUint16(header[:], activePageMarker)
	return s.flash.Program(p.startAddress, header[:])
}

func (s *Store) findByKey(p page, key uint16) (uint32, bool) {
	for cell := cellCount - 1; cell >= 0; cell-- {
		cellKey, value := s.cellKeyValue(p, cell)
		if cellKey == key {
			return value, true
		}
	}
	return 0, false
}

func (s *Store) cellKeyValue(p page, cell int) (uint16, uint32) {
	offset := p.startAddress + headerSize + cell*cellSize
	mem := s.flash.Read()
	value := binary.LittleEndian.Uint32(mem[offset : offset+4])
	key := binary.LittleEndian.Uint16(mem[offset+4 : offset+cellSize])
	return key, value
}

// moveToNewPageIfNeeded migrates the latest value of every key still
// live in the active page to the other page, then erases the old page
// and marks the new one active, exactly when the active page's last
// cell is already occupied. Ported from
// Storage::move_to_new_page_if_needed. Migration scans the active page
// high-to-low (most-recent-first) and skips a key once it has already
// been copied, so only the latest value per key survives the move.
func (s *Store) moveToNewPageIfNeeded() error {
	active, ok := s.findActivePage()
	if !ok {
		return ErrNoActivePage
	}
	if lastKey, _ := s.cellKeyValue(active, cellCount-1); lastKey == emptyKey {
		return nil
	}

	target := active.next()
	targetCell := 0
	for cell := cellCount - 1; cell >= 0; cell-- {
		key, value := s.cellKeyValue(active, cell)
		if key == emptyKey {
			continue
		}
		if _, found := s.findByKey(target, key); found {
			continue
		}
		if err := s.writeCell(target, targetCell, key, value); err != nil {
			return err
		}
		targetCell++
	}

	if err := s.flash.Erase(active.sector); err != nil {
		return err
	}
	return s.markActivePage(target)
}

func (s *Store) writeCell(p page, cell int, key uint16, value uint32) error {
	offset := p.startAddress + headerSize + cell*cellSize
	var buf [cellSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], value)
	binary.LittleEndian.PutUint16(buf[4:6], key)
	return s.flash.Program(offset, buf[:])
}

func (s *Store) readPageHeader(p page) uint16 {
	mem := s.flash.Read()
	return binary.LittleEndian.Uint16(mem[p.startAddress : p.startAddress+2])
}
