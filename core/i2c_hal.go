package core

// Reg is the byte offset of an I2C controller register from the peripheral base.
// Offsets follow the STM32F3 I2C (v2) register map.
type Reg uint32

const (
	RegCR1      Reg = 0x00 // Control register 1
	RegCR2      Reg = 0x04 // Control register 2
	RegOAR1     Reg = 0x08 // Own address 1
	RegOAR2     Reg = 0x0C // Own address 2
	RegTIMINGR  Reg = 0x10 // Timing register
	RegTIMEOUTR Reg = 0x14 // Timeout register
	RegISR      Reg = 0x18 // Interrupt and status register
	RegICR      Reg = 0x1C // Interrupt clear register
	RegPECR     Reg = 0x20 // PEC register
	RegRXDR     Reg = 0x24 // Receive data register
	RegTXDR     Reg = 0x28 // Transmit data register
)

// String returns the reference manual name of the register.
func (r Reg) String() string {
	switch r {
	case RegCR1:
		return "CR1"
	case RegCR2:
		return "CR2"
	case RegOAR1:
		return "OAR1"
	case RegOAR2:
		return "OAR2"
	case RegTIMINGR:
		return "TIMINGR"
	case RegTIMEOUTR:
		return "TIMEOUTR"
	case RegISR:
		return "ISR"
	case RegICR:
		return "ICR"
	case RegPECR:
		return "PECR"
	case RegRXDR:
		return "RXDR"
	case RegTXDR:
		return "TXDR"
	default:
		return "REG(" + hex8(uint8(r)) + ")"
	}
}

// CR1 bits
const (
	CR1_PE uint32 = 1 << 0 // Peripheral enable
)

// CR2 bits and fields
const (
	CR2_SADD_POS   = 1 // 7-bit address sits in SADD[7:1]
	CR2_SADD_MASK  = uint32(0x7F) << CR2_SADD_POS
	CR2_RD_WRN     = uint32(1) << 10 // Transfer direction (0: write, 1: read)
	CR2_START      = uint32(1) << 13 // Generate START/RESTART
	CR2_STOP       = uint32(1) << 14 // Generate STOP
	CR2_NBYTES_POS = 16
	CR2_NBYTES     = uint32(0xFF) << CR2_NBYTES_POS
	CR2_RELOAD     = uint32(1) << 24
	CR2_AUTOEND    = uint32(1) << 25 // Hardware NACK+STOP after NBYTES
)

// ISR flags
const (
	ISR_TXIS  uint32 = 1 << 1  // Transmit data register empty, byte expected
	ISR_RXNE  uint32 = 1 << 2  // Receive data register not empty
	ISR_ADDR  uint32 = 1 << 3  // Address matched (slave mode)
	ISR_NACKF uint32 = 1 << 4  // NACK received
	ISR_STOPF uint32 = 1 << 5  // STOP detected
	ISR_TC    uint32 = 1 << 6  // Transfer complete (AUTOEND=0, RELOAD=0)
	ISR_TCR   uint32 = 1 << 7  // Transfer complete reload
	ISR_BUSY  uint32 = 1 << 15 // Bus busy
)

// ICR bits. Writing 1 clears the matching ISR flag.
const (
	ICR_ADDRCF uint32 = 1 << 3
	ICR_NACKCF uint32 = 1 << 4
	ICR_STOPCF uint32 = 1 << 5
)

// MaxTransferBytes is the largest byte count a single transfer can program
// into the NBYTES field.
const MaxTransferBytes = 255

// Registers is the control/status surface of one I2C controller instance.
// Hardware targets map it onto the peripheral's memory; tests back it with
// the simulated controller in core/sim.
//
// Implementations are not required to be safe for concurrent use. The driver
// assumes it is the only user of the controller.
type Registers interface {
	// Load reads a 32-bit register.
	Load(r Reg) uint32

	// Store writes a 32-bit register.
	Store(r Reg, v uint32)
}
