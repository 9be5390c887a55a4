package nn

import (
	"strings"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Device names the compute backend.  It is chosen once from configuration
// and passed explicitly to model constructors and batch collation.
type Device string

// CPU is the only backend implemented.
const CPU Device = "cpu"

// ParseDevice validates a configured device name.
func ParseDevice(s string) (Device, error) {
	d := Device(strings.ToLower(strings.TrimSpace(s)))
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// Validate returns TRN_005 for anything but CPU.
func (d Device) Validate() error {
	if d != CPU {
		return errors.Newf(errors.ErrCodeDeviceUnsupported, "device %q is not supported", string(d)).
			WithDetail("supported devices: cpu")
	}
	return nil
}

// String implements fmt.Stringer.
func (d Device) String() string { return string(d) }

// CheckSameDevice returns TRN_003 when a and b differ.
func CheckSameDevice(a, b Device) error {
	if a != b {
		return errors.Newf(errors.ErrCodeTrainingDeviceMismatch, "device mismatch: %s vs %s", a, b)
	}
	return nil
}

//Personal.AI order the ending
