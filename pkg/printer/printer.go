package printer

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Printer sends raw ESC/POS data to a thermal printer.
type Printer interface {
	Print(data []byte) error
	Close() error
	IsConnected() bool
}

// Device printers write to a character device such as /dev/usb/lp0. The
// filesystem is injectable so print jobs can be captured in tests.
type devicePrinter struct {
	fs   afero.Fs
	path string
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(fs afero.Fs, devicePath string) Printer {
	return &devicePrinter{fs: fs, path: devicePath}
}

func (p *devicePrinter) Print(data []byte) error {
	f, err := p.fs.OpenFile(p.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("printer: open device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write device %s: %w", p.path, err)
	}
	return nil
}

func (p *devicePrinter) Close() error {
	return nil // opened per job
}

func (p *devicePrinter) IsConnected() bool {
	_, err := p.fs.Stat(p.path)
	return err == nil
}

type networkPrinter struct {
	address string
	timeout time.Duration
	mu      sync.Mutex
}

// NewNetworkPrinter creates a printer that connects via TCP, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address: address,
		timeout: 5 * time.Second,
	}
}

func (p *networkPrinter) Print(data []byte) error {
	// A raw 9100 port accepts one job at a time.
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error {
	return nil
}

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

type nullPrinter struct{}

// NewNullPrinter creates a no-op printer for terminals without hardware.
func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print(data []byte) error { return nil }
func (nullPrinter) Close() error            { return nil }
func (nullPrinter) IsConnected() bool       { return false }

// NewPrinterFromConfig creates a Printer of type "usb", "network" or "none".
func NewPrinterFromConfig(fs afero.Fs, printerType, usbPath, address string) (Printer, error) {
	switch printerType {
	case "usb":
		if usbPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(fs, usbPath), nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(address), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", printerType)
	}
}
