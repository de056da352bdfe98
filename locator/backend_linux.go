//go:build linux

package locator

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v3/process"
)

// linuxBackend covers the Proton/Wine case: there is no ReadProcessMemory, so
// region enumeration reads /proc/<pid>/maps and reads go through
// /proc/<pid>/mem.
type linuxBackend struct {
	pid int32
}

func newPlatformBackend() backend {
	return &linuxBackend{}
}

func (b *linuxBackend) attach(processName string) error {
	procs, err := gopsproc.Processes()
	if err != nil {
		return &Error{Kind: EnumerationFailed, Err: err}
	}
	target := strings.ToLower(processName)
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if strings.ToLower(name) == target {
			b.pid = p.Pid
			if _, err := os.Stat(fmt.Sprintf("/proc/%d/maps", b.pid)); err != nil {
				return &Error{Kind: AccessDenied, Err: err}
			}

			is64, err := is64BitTarget(b.pid)
			if err == nil && is64 {
				b.pid = 0
				return &Error{Kind: UnsupportedTarget}
			}
			return nil
		}
	}
	return &Error{Kind: ProcessNotRunning}
}

// is64BitTarget reports whether the process's main executable is a 64-bit
// ELF build, by reading the EI_CLASS byte of its ELF header (offset 4:
// ELFCLASS32=1, ELFCLASS64=2) via /proc/<pid>/exe.
func is64BitTarget(pid int32) (bool, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/exe", pid))
	if err != nil {
		return false, err
	}
	defer f.Close()

	var header [5]byte
	if _, err := f.Read(header[:]); err != nil {
		return false, err
	}
	if header[0] != 0x7F || header[1] != 'E' || header[2] != 'L' || header[3] != 'F' {
		return false, fmt.Errorf("not an ELF binary")
	}
	const elfClass64 = 2
	return header[4] == elfClass64, nil
}

func (b *linuxBackend) detach() error {
	b.pid = 0
	return nil
}

func (b *linuxBackend) enumerateRegions() ([]MemoryRegion, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", b.pid))
	if err != nil {
		if !b.isAlive() {
			return nil, &Error{Kind: ProcessNotRunning, Err: err}
		}
		return nil, &Error{Kind: EnumerationFailed, Err: err}
	}
	defer f.Close()

	var regions []MemoryRegion
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		region, ok := parseMapsLine(scanner.Text())
		if ok {
			regions = append(regions, region)
		}
	}
	if err := scanner.Err(); err != nil {
		if !b.isAlive() {
			return nil, &Error{Kind: ProcessNotRunning, Err: err}
		}
		return nil, &Error{Kind: EnumerationFailed, Err: err}
	}
	return regions, nil
}

// isAlive reports whether /proc/<pid> still exists. A process that exited
// removes its /proc entry immediately, which is what distinguishes "the
// game closed" from an ordinary, region-local read/enumeration failure.
func (b *linuxBackend) isAlive() bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", b.pid))
	return err == nil
}

// parseMapsLine parses one line of /proc/<pid>/maps, e.g.:
//
//	08048000-08056000 r-xp 00000000 03:01 12345  /path/to/exe
func parseMapsLine(line string) (MemoryRegion, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return MemoryRegion{}, false
	}
	bounds := strings.Split(fields[0], "-")
	if len(bounds) != 2 {
		return MemoryRegion{}, false
	}
	start, err := strconv.ParseUint(bounds[0], 16, 64)
	if err != nil {
		return MemoryRegion{}, false
	}
	end, err := strconv.ParseUint(bounds[1], 16, 64)
	if err != nil || end <= start {
		return MemoryRegion{}, false
	}
	perms := fields[1]
	if !strings.HasPrefix(perms, "r") {
		return MemoryRegion{}, false
	}
	return MemoryRegion{
		Base:     Addr32(uint32(start)),
		Size:     uint32(end - start),
		Readable: true,
	}, true
}

func (b *linuxBackend) read(addr Addr32, length uint32) ([]byte, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/mem", b.pid))
	if err != nil {
		if !b.isAlive() {
			return nil, &Error{Kind: ProcessNotRunning, Err: err}
		}
		return nil, &Error{Kind: ReadFailed, Address: addr, Err: err}
	}
	defer f.Close()

	if _, err := f.Seek(int64(addr), 0); err != nil {
		if !b.isAlive() {
			return nil, &Error{Kind: ProcessNotRunning, Err: err}
		}
		return nil, &Error{Kind: ReadFailed, Address: addr, Err: err}
	}

	buf := make([]byte, length)
	n, err := f.Read(buf)
	if err != nil || uint32(n) != length {
		if !b.isAlive() {
			return nil, &Error{Kind: ProcessNotRunning, Err: err}
		}
		return nil, &Error{Kind: ReadFailed, Address: addr, Err: err}
	}
	return buf, nil
}
