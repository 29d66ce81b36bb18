package beacon

import "fmt"

// vendorNames maps Bluetooth SIG company IDs to short labels used to name
// unnamed beacons on the tracker.
// See: https://www.bluetooth.com/specifications/assigned-numbers/
var vendorNames = map[uint16]string{
	0x004C: "Apple",
	0x0006: "Microsoft",
	0x00E0: "Google",
	0x0075: "Samsung",
	0x0310: "Xiaomi",
	0x0157: "Huawei",
	0x038F: "Garmin",
	0x0087: "Bose",
	0x012D: "Sony",
	0x0171: "Amazon",
	0x02FF: "Tile",
	0x0059: "Nordic",
	0x0499: "Ruuvi",
	0x015D: "Espressif",
	0x03DA: "Fitbit",
	0x0246: "Logitech",
}

// beaconName picks a display name: the advertised local name, else the
// vendor label plus the last two octets of the address, else "".
func beaconName(localName string, companyIDs []uint16, mac string) string {
	if localName != "" {
		return localName
	}
	for _, id := range companyIDs {
		if vendor, ok := vendorNames[id]; ok {
			suffix := mac
			if len(mac) >= 17 {
				suffix = mac[12:]
			}
			return fmt.Sprintf("%s %s", vendor, suffix)
		}
	}
	return ""
}
