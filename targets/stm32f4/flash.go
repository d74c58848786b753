//go:build stm32f4

package main

import (
	"device/stm32"
	"runtime/volatile"
	"unsafe"
)

// internalFlash implements storage.Flash over the MCU's own program
// flash, sectors 1 and 2 (0x08004000 / 0x08008000), matching the
// storage package's hard-coded page addresses exactly — those offsets
// (0x4000, 0x8000) were chosen to land on STM32F4 16KB sector
// boundaries, per original_source/Software/sm4-firmware/src/blocks/eeprom.rs.
type internalFlash struct{}

const (
	flashBase  = 0x08000000
	flashSize  = 0x10000 // cover sectors 0-3 (4*16KB); only 1 and 2 are used
	flashKey1  = 0x45670123
	flashKey2  = 0xCDEF89AB
)

// Read returns the live contents of the mapped flash region: program
// flash is memory-mapped and directly readable, no peripheral access
// needed.
func (internalFlash) Read() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(flashBase))), flashSize)
}

// Program writes data at offset, one 32-bit word at a time (the
// F4's flash controller's native program granularity; unaligned or
// odd-length writes pad the final word with 0xFF, which is a no-op
// against already-erased flash).
func (internalFlash) Program(offset int, data []byte) error {
	unlock()
	defer lock()

	stm32.FLASH.CR.ReplaceBits(0<<stm32.FLASH_CR_PSIZE_Pos, stm32.FLASH_CR_PSIZE_Msk, 0) // PSIZE=0: program by byte
	stm32.FLASH.CR.SetBits(stm32.FLASH_CR_PG)
	defer stm32.FLASH.CR.ClearBits(stm32.FLASH_CR_PG)

	for i, b := range data {
		addr := (*volatile.Register8)(unsafe.Pointer(uintptr(flashBase + offset + i)))
		addr.Set(b)
		waitNotBusy()
		if stm32.FLASH.SR.Get()&flashErrorMask != 0 {
			return errProgramFailed
		}
	}
	return nil
}

// Erase erases the given 1-indexed sector, per the eeprom.rs Page
// numbering (sector 1 and 2 map one-to-one onto STM32 SNB 1 and 2).
func (internalFlash) Erase(sector uint8) error {
	unlock()
	defer lock()

	stm32.FLASH.CR.ReplaceBits(uint32(sector)<<stm32.FLASH_CR_SNB_Pos, stm32.FLASH_CR_SNB_Msk, 0)
	stm32.FLASH.CR.SetBits(stm32.FLASH_CR_SER)
	stm32.FLASH.CR.SetBits(stm32.FLASH_CR_STRT)
	waitNotBusy()
	stm32.FLASH.CR.ClearBits(stm32.FLASH_CR_SER)

	if stm32.FLASH.SR.Get()&flashErrorMask != 0 {
		return errEraseFailed
	}
	return nil
}

func unlock() {
	if stm32.FLASH.CR.Get()&stm32.FLASH_CR_LOCK == 0 {
		return
	}
	stm32.FLASH.KEYR.Set(flashKey1)
	stm32.FLASH.KEYR.Set(flashKey2)
}

func lock() {
	stm32.FLASH.CR.SetBits(stm32.FLASH_CR_LOCK)
}

func waitNotBusy() {
	for stm32.FLASH.SR.Get()&stm32.FLASH_SR_BSY != 0 {
	}
}

const flashErrorMask = stm32.FLASH_SR_PGAERR | stm32.FLASH_SR_PGPERR | stm32.FLASH_SR_PGSERR | stm32.FLASH_SR_WRPERR

var (
	errProgramFailed = flashErr("flash: program failed")
	errEraseFailed   = flashErr("flash: erase failed")
)

type flashErr string

func (e flashErr) Error() string { return string(e) }
