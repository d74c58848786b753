package core

// TimerFreq is the tick rate GetTime()'s hardware timer source runs
// at. Defaults to 12MHz; platform init (see targets/*/clock.go) should
// call SetTimerFreq once it knows the board's actual clock tree, since
// TimerFromUS/TimerToUS convert against whatever value is current.
var TimerFreq uint32 = 12000000

// SetTimerFreq calibrates TimerFromUS/TimerToUS to the hardware timer
// source's actual tick rate.
func SetTimerFreq(hz uint32) {
	TimerFreq = hz
}

// GetTimerFrequency returns the tick rate TimerFromUS/TimerToUS
// convert against, for callers that compute tick counts directly
// instead of going through those helpers.
func GetTimerFrequency() uint32 {
	return TimerFreq
}

var (
	systemTicks uint32
	bootTime    uint64 // Time at boot for uptime calculation
)

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// GetUptime returns 64-bit uptime in timer ticks
func GetUptime() uint64 {
	// Return current time as 64-bit value
	// In a real implementation with hardware, this would read a 64-bit counter
	return uint64(GetTime())
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return (us * TimerFreq) / 1000000
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return (ticks * 1000000) / TimerFreq
}

// TimerInit initializes the system timer
func TimerInit() {
	// Platform-specific initialization
	// This will be implemented differently for each target
	bootTime = uint64(GetTime())
}

// ProcessTimers processes scheduled timers
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
