package sim

import "time"

// ResetTime is how long the model ignores its address after DEVICE_RESET.
const ResetTime = 100 * time.Millisecond

// MPU-6050 registers the model gives behaviour to.
const (
	mpuAccelConfig = 0x1C
	mpuAccelXOutH  = 0x3B
	mpuPwrMgmt1    = 0x6B
	mpuWhoAmI      = 0x75

	mpuDeviceReset = 0x80
	mpuSleep       = 0x40
)

// MPU6050 models the register file of an InvenSense MPU-6050. Writing the
// DEVICE_RESET bit restores power-on values (asleep) and NACKs the address
// until ResetTime has been passed to Advance. The accelerometer output
// registers read zero while the device sleeps.
type MPU6050 struct {
	*Memory
	accel     [3]int16
	resetLeft time.Duration
}

// NewMPU6050 returns a model in its power-on state.
func NewMPU6050() *MPU6050 {
	d := &MPU6050{Memory: NewMemory()}
	d.reset()
	return d
}

// SetAcceleration sets the raw accelerometer samples the device reports.
func (d *MPU6050) SetAcceleration(x, y, z int16) {
	d.accel = [3]int16{x, y, z}
	d.latch()
}

// Asleep reports whether the SLEEP bit of PWR_MGMT_1 is set.
func (d *MPU6050) Asleep() bool {
	return d.Mem[mpuPwrMgmt1]&mpuSleep != 0
}

// Resetting reports whether a device reset is still in progress.
func (d *MPU6050) Resetting() bool {
	return d.resetLeft > 0
}

// Advance lets simulated time pass. It has the signature of time.Sleep so
// it can stand in for the driver's delay.
func (d *MPU6050) Advance(t time.Duration) {
	d.resetLeft = max(d.resetLeft-t, 0)
}

// AccelRange returns the AFS_SEL field of ACCEL_CONFIG.
func (d *MPU6050) AccelRange() uint8 {
	return d.Mem[mpuAccelConfig] >> 3 & 0x03
}

func (d *MPU6050) reset() {
	d.Mem = [256]byte{}
	d.Mem[mpuWhoAmI] = 0x68
	d.Mem[mpuPwrMgmt1] = mpuSleep
	d.latch()
}

func (d *MPU6050) latch() {
	for i, v := range d.accel {
		d.Mem[mpuAccelXOutH+2*i] = byte(uint16(v) >> 8)
		d.Mem[mpuAccelXOutH+2*i+1] = byte(v)
	}
}

func (d *MPU6050) Start(read bool) bool {
	if d.Resetting() {
		return false
	}
	return d.Memory.Start(read)
}

func (d *MPU6050) Write(b byte) bool {
	first := d.first
	if !d.Memory.Write(b) {
		return false
	}
	if !first && d.Pointer() == mpuPwrMgmt1+1 && b&mpuDeviceReset != 0 {
		d.reset()
		d.resetLeft = ResetTime
	}
	return true
}

func (d *MPU6050) Read() byte {
	p := d.Pointer()
	b := d.Memory.Read()
	if d.Asleep() && p >= mpuAccelXOutH && p < mpuAccelXOutH+6 {
		return 0
	}
	return b
}
