//go:build windows

package locator

import (
	"syscall"
	"unsafe"
)

const processorArchitectureIntel = 0

// systemInfo mirrors the fields of Win32's SYSTEM_INFO that
// GetNativeSystemInfo fills in; only ProcessorArchitecture is used here.
type systemInfo struct {
	ProcessorArchitecture     uint16
	reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

var (
	modKernel32             = syscall.NewLazyDLL("kernel32.dll")
	procGetNativeSystemInfo = modKernel32.NewProc("GetNativeSystemInfo")
)

// isHost64Bit reports whether the current OS is a 64-bit Windows install.
// GetNativeSystemInfo reports the host's native architecture, bypassing the
// WOW64 layer's own self-reported architecture, so a 32-bit process running
// on a 64-bit host can be told apart from one running on a true 32-bit host.
func isHost64Bit() bool {
	var info systemInfo
	procGetNativeSystemInfo.Call(uintptr(unsafe.Pointer(&info)))
	return info.ProcessorArchitecture != processorArchitectureIntel
}
