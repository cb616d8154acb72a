// Package registers addresses the memory-mapped radio registers of the
// CC2510/CC2511 family used by 2.4 GHz RfCat dongles.
package registers

// Crystal frequency of the CC2510/CC2511 (the CC1110/CC1111 use 24 MHz)
const CrystalHz uint32 = 26000000

// Register addresses (memory-mapped at 0xDF00)
const (
	RegCHANNR    = 0xDF06
	RegFREQ2     = 0xDF09
	RegFREQ1     = 0xDF0A
	RegFREQ0     = 0xDF0B
	RegLQI       = 0xDF39
	RegRSSI      = 0xDF3A
	RegMARCSTATE = 0xDF3B
	RegRFST      = 0xDFE1
)

// Strobe commands written to RFST. RX and IDLE go through the firmware's
// RF mode command instead, which also tracks the mode it restores after TX.
const (
	StrobeSCAL  = 0x01
	StrobeSIDLE = 0x04
)

// RadioState is the MARCSTATE main radio control state
type RadioState uint8

const (
	StateSLEEP       RadioState = 0x00
	StateIDLE        RadioState = 0x01
	StateXOFF        RadioState = 0x02
	StateVCOON_MC    RadioState = 0x03
	StateREGON_MC    RadioState = 0x04
	StateMAN_CAL     RadioState = 0x05
	StateVCOON       RadioState = 0x06
	StateREGON       RadioState = 0x07
	StateSTARTCAL    RadioState = 0x08
	StateBWBOOST     RadioState = 0x09
	StateFS_LOCK     RadioState = 0x0A
	StateIFADCON     RadioState = 0x0B
	StateENDCAL      RadioState = 0x0C
	StateRX          RadioState = 0x0D
	StateRX_END      RadioState = 0x0E
	StateRX_RST      RadioState = 0x0F
	StateTXRX_SWITCH RadioState = 0x10
	StateRXFIFO_OVF  RadioState = 0x11
	StateFSTXON      RadioState = 0x12
	StateTX          RadioState = 0x13
	StateTX_END      RadioState = 0x14
	StateRXTX_SWITCH RadioState = 0x15
	StateTXFIFO_UNF  RadioState = 0x16
)

// String returns a human-readable name for the radio state
func (s RadioState) String() string {
	names := map[RadioState]string{
		StateSLEEP:       "SLEEP",
		StateIDLE:        "IDLE",
		StateXOFF:        "XOFF",
		StateVCOON_MC:    "VCOON_MC",
		StateREGON_MC:    "REGON_MC",
		StateMAN_CAL:     "MANCAL",
		StateVCOON:       "VCOON",
		StateREGON:       "REGON",
		StateSTARTCAL:    "STARTCAL",
		StateBWBOOST:     "BWBOOST",
		StateFS_LOCK:     "FS_LOCK",
		StateIFADCON:     "IFADCON",
		StateENDCAL:      "ENDCAL",
		StateRX:          "RX",
		StateRX_END:      "RX_END",
		StateRX_RST:      "RX_RST",
		StateTXRX_SWITCH: "TXRX_SWITCH",
		StateRXFIFO_OVF:  "RXFIFO_OVERFLOW",
		StateFSTXON:      "FSTXON",
		StateTX:          "TX",
		StateTX_END:      "TX_END",
		StateRXTX_SWITCH: "RXTX_SWITCH",
		StateTXFIFO_UNF:  "TXFIFO_UNDERFLOW",
	}
	if name, ok := names[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsFault reports whether the state is a FIFO error that needs SIDLE to clear
func (s RadioState) IsFault() bool {
	return s == StateRXFIFO_OVF || s == StateTXFIFO_UNF
}
