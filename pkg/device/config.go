package device

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
)

// WifiConfig is the device's reply to "get all", ported field-for-field
// from devices/wifi/config.rs. Most fields beyond NodeMap and
// ConfigVersion are opaque to this router: it never interprets the wifi
// credentials or the I2C/LEDC wiring, but keeps them so a future "set
// config" round-trips losslessly.
type WifiConfig struct {
	WifiSSID        string   `json:"wifi_ssid"`
	WifiPassword    string   `json:"wifi_password"`
	MDNSName        string   `json:"mdns_name"`
	NodeMap         NodeMap  `json:"node_map"`
	I2CSCL          uint32   `json:"i2c_scl"`
	I2CSDA          uint32   `json:"i2c_sda"`
	I2CSpeed        uint32   `json:"i2c_speed"`
	MotorMapI2CNum  uint32   `json:"motor_map_i2c_num"`
	MotorMapI2C     []uint32 `json:"motor_map_i2c"`
	MotorMapLEDCNum uint32   `json:"motor_map_ledc_num"`
	MotorMapLEDC    []uint32 `json:"motor_map_ledc"`
	ConfigVersion   uint32   `json:"config_version"`
}

// NodeMap is a device's node_map field: on the wire it is a hex string of
// concatenated 8-byte haptic.Node encodings; in memory it's the decoded
// node list.
type NodeMap []haptic.Node

// UnmarshalJSON decodes the hex string into a node list, the Go analog of
// config.rs's deserialize_from_str.
func (nm *NodeMap) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s)%2 != 0 {
		return fmt.Errorf("device: node_map hex string has odd length")
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("device: node_map: %w", err)
	}
	if len(raw)%8 != 0 {
		return fmt.Errorf("device: node_map length %d is not a multiple of 8", len(raw))
	}

	nodes := make([]haptic.Node, 0, len(raw)/8)
	for i := 0; i < len(raw); i += 8 {
		var b [8]byte
		copy(b[:], raw[i:i+8])
		nodes = append(nodes, haptic.NodeFromBytes(b))
	}
	*nm = nodes
	return nil
}

// MarshalJSON encodes the node list back to its concatenated hex-string
// wire form.
func (nm NodeMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(haptic.EncodeNodes(nm)))
}

// parseWifiConfig decodes a "get all" JSON reply into a WifiConfig.
func parseWifiConfig(raw []byte) (*WifiConfig, error) {
	var cfg WifiConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("device: parse wifi config: %w", err)
	}
	return &cfg, nil
}
