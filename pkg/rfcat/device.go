package rfcat

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
)

// inEndpoint and outEndpoint are the halves of gousb's EP5 endpoints we use
type inEndpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

type outEndpoint interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Device represents an RfCat dongle on USB
type Device struct {
	usbDevice    *gousb.Device
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	epIn         inEndpoint
	epOut        outEndpoint
	Serial       string
	Manufacturer string
	Product      string
	ProductID    uint16
	Bus          int
	Address      int

	// sendMu serializes command/response exchanges; recvMu guards recvBuf
	sendMu  sync.Mutex
	recvMu  sync.Mutex
	recvBuf []byte
}

func isSupportedProduct(pid gousb.ID) bool {
	for _, p := range SupportedProductIDs {
		if pid == gousb.ID(p) {
			return true
		}
	}
	return false
}

// FindAllDevices opens every connected dongle with a supported product ID
func FindAllDevices(context *gousb.Context) ([]*Device, error) {
	devices := []*Device{}

	usbDevices, err := context.OpenDevices(func(descriptor *gousb.DeviceDesc) bool {
		return descriptor.Vendor == gousb.ID(VendorID) && isSupportedProduct(descriptor.Product)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, usbDev := range usbDevices {
		device, err := wrapDevice(usbDev)
		if err != nil {
			usbDev.Close()
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

func wrapDevice(usbDev *gousb.Device) (*Device, error) {
	manufacturer, _ := usbDev.Manufacturer()
	product, _ := usbDev.Product()
	serial, _ := usbDev.SerialNumber()

	usbDev.SetAutoDetach(true)

	config, err := usbDev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	iface, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("failed to claim interface: %w", err)
	}

	epIn, err := iface.InEndpoint(EP5Number)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}

	epOut, err := iface.OutEndpoint(EP5Number)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}

	device := newDevice(epIn, epOut)
	device.usbDevice = usbDev
	device.usbConfig = config
	device.usbInterface = iface
	device.Serial = serial
	device.Manufacturer = manufacturer
	device.Product = product
	device.ProductID = uint16(usbDev.Desc.Product)
	device.Bus = usbDev.Desc.Bus
	device.Address = usbDev.Desc.Address

	// Drain any stale data from the receive endpoint
	device.drainReceiveBuffer()

	return device, nil
}

func newDevice(in inEndpoint, out outEndpoint) *Device {
	return &Device{
		epIn:    in,
		epOut:   out,
		recvBuf: make([]byte, 0, EP5OutBufferSize),
	}
}

// Close idles the radio and releases the USB resources
func (d *Device) Close() error {
	if d.epOut != nil {
		d.setRadioIDLE()
	}

	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	if d.usbDevice != nil {
		return d.usbDevice.Close()
	}
	return nil
}

// drainReceiveBuffer discards data left over from a previous session
func (d *Device) drainReceiveBuffer() {
	buf := make([]byte, 512)
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		n, err := d.epIn.ReadContext(ctx, buf)
		cancel()
		if err != nil || n == 0 {
			break
		}
	}
	d.recvMu.Lock()
	d.recvBuf = d.recvBuf[:0]
	d.recvMu.Unlock()
}

// setRadioIDLE writes SIDLE to RFST without waiting for the response
func (d *Device) setRadioIDLE() {
	payload := make([]byte, 3)
	binary.LittleEndian.PutUint16(payload[0:2], 0xDFE1) // RFST
	payload[2] = RFModeIDLE

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	d.epOut.WriteContext(ctx, encodeCommand(AppSystem, SysCmdPoke, payload))
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (Serial: %s)", d.Manufacturer, d.Product, d.Serial)
}

// Send sends a command via EP5 and waits up to timeout for its response
func (d *Device) Send(app uint8, cmd uint8, payload []byte, timeout time.Duration) ([]byte, error) {
	if timeout == 0 {
		timeout = USBDefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return d.SendContext(ctx, app, cmd, payload)
}

// SendContext sends a command via EP5 and waits for its response until ctx is done
func (d *Device) SendContext(ctx context.Context, app uint8, cmd uint8, payload []byte) ([]byte, error) {
	d.sendMu.Lock()
	defer d.sendMu.Unlock()

	packet := encodeCommand(app, cmd, payload)
	n, err := d.epOut.WriteContext(ctx, packet)
	if err != nil {
		if ctx.Err() != nil || isTransientUSBError(err) {
			return nil, fmt.Errorf("write timeout: %w", err)
		}
		return nil, fmt.Errorf("failed to write to EP5: %w", err)
	}
	if n != len(packet) {
		return nil, fmt.Errorf("short write: wrote %d of %d bytes", n, len(packet))
	}

	return d.RecvContext(ctx, app, cmd)
}

// Recv reads a response for app/cmd, waiting up to timeout
func (d *Device) Recv(expectedApp uint8, expectedCmd uint8, timeout time.Duration) ([]byte, error) {
	if timeout == 0 {
		timeout = USBDefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return d.RecvContext(ctx, expectedApp, expectedCmd)
}

// RecvContext reads a response for app/cmd until ctx is done. Responses
// for other app/cmd pairs are discarded.
func (d *Device) RecvContext(ctx context.Context, expectedApp uint8, expectedCmd uint8) ([]byte, error) {
	d.recvMu.Lock()
	defer d.recvMu.Unlock()

	buf := make([]byte, 512)
	for {
		response, remaining, err := parseResponse(d.recvBuf, expectedApp, expectedCmd)
		d.recvBuf = remaining
		if err == nil {
			return response, nil
		}
		if errors.Is(err, errMismatch) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Short read slices keep cancellation responsive
		readCtx, cancel := context.WithTimeout(ctx, usbReadSlice)
		n, err := d.epIn.ReadContext(readCtx, buf)
		cancel()

		if err != nil {
			if readCtx.Err() != nil || isTransientUSBError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read from EP5: %w", err)
		}

		d.recvBuf = append(d.recvBuf, buf[:n]...)
	}
}

// isTransientUSBError reports whether err is a timeout or cancellation
// that libusb surfaces without wrapping a context error
func isTransientUSBError(err error) bool {
	if errors.Is(err, gousb.TransferTimedOut) || errors.Is(err, gousb.TransferCancelled) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "canceled") ||
		strings.Contains(errStr, "cancelled")
}

// Ping sends a ping command and verifies the echo
func (d *Device) Ping(data []byte) error {
	response, err := d.Send(AppSystem, SysCmdPing, data, USBDefaultTimeout)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	if len(response) != len(data) {
		return fmt.Errorf("ping response length mismatch: sent %d bytes, got %d", len(data), len(response))
	}

	for i := range data {
		if response[i] != data[i] {
			return fmt.Errorf("ping response data mismatch at byte %d: sent 0x%02X, got 0x%02X", i, data[i], response[i])
		}
	}

	return nil
}

// Peek reads bytes from XDATA memory
func (d *Device) Peek(address uint16, length uint16) ([]byte, error) {
	// Payload: bytecount(2 LE) + address(2 LE)
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint16(payload[0:2], length)
	binary.LittleEndian.PutUint16(payload[2:4], address)

	response, err := d.Send(AppSystem, SysCmdPeek, payload, USBDefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("peek failed at 0x%04X: %w", address, err)
	}

	return response, nil
}

// PeekByte reads a single byte from XDATA memory
func (d *Device) PeekByte(address uint16) (uint8, error) {
	data, err := d.Peek(address, 1)
	if err != nil {
		return 0, err
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("peek returned no data")
	}
	return data[0], nil
}

// Poke writes bytes to XDATA memory
func (d *Device) Poke(address uint16, data []byte) error {
	// Payload: address(2 LE) + data
	payload := make([]byte, 2+len(data))
	binary.LittleEndian.PutUint16(payload[0:2], address)
	copy(payload[2:], data)

	response, err := d.Send(AppSystem, SysCmdPoke, payload, USBDefaultTimeout)
	if err != nil {
		return fmt.Errorf("poke failed at 0x%04X: %w", address, err)
	}

	// Response carries the bytes left unwritten
	if len(response) >= 2 {
		if left := binary.LittleEndian.Uint16(response[0:2]); left != 0 {
			return fmt.Errorf("poke incomplete: %d bytes left", left)
		}
	}

	return nil
}

// PokeByte writes a single byte to XDATA memory
func (d *Device) PokeByte(address uint16, value uint8) error {
	return d.Poke(address, []byte{value})
}

// GetBuildType returns the firmware build type string
func (d *Device) GetBuildType() (string, error) {
	response, err := d.Send(AppSystem, SysCmdBuildType, nil, USBDefaultTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to get build type: %w", err)
	}
	return trimCString(response), nil
}

// GetPartNum returns the chip part number
func (d *Device) GetPartNum() (uint8, error) {
	response, err := d.Send(AppSystem, SysCmdPartNum, nil, USBDefaultTimeout)
	if err != nil {
		return 0, fmt.Errorf("failed to get part number: %w", err)
	}
	if len(response) < 1 {
		return 0, fmt.Errorf("empty part number response")
	}
	return response[0], nil
}
