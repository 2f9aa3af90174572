// Command test-notify is a manual test for the BLE peripheral.
// It advertises the counter service and notifies a fixed value sequence
// every second, whether or not a central is connected. Subscribe to the
// characteristic from a phone (e.g. nRF Connect) to watch the values.
//
// Usage:
//
//	go run ./cmd/test-notify [--name "BLE Counter"] [--adapter hci0] [--duration 30s]
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/chaz8081/ble-counter/internal/ble"
)

func main() {
	name := flag.String("name", ble.DefaultLocalName, "advertised local name")
	adapterID := flag.String("adapter", "hci0", "BlueZ adapter id")
	duration := flag.Duration("duration", 30*time.Second, "how long to notify")
	flag.Parse()

	p := ble.NewPeripheral(*adapterID)
	err := ble.Begin(p,
		ble.Identity{LocalName: *name, ServiceUUID: ble.ServiceUUID},
		ble.CharacteristicSpec{UUID: ble.CounterCharUUID, Readable: true, Notify: true},
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Advertising %q for %s. Connect a central now!\n", *name, *duration)

	values := []int32{0, 1, 42, 99, 100, -1}
	deadline := time.Now().Add(*duration)
	for i := 0; time.Now().Before(deadline); i++ {
		v := values[i%len(values)]
		status := "no central"
		if peer, ok := p.PollConnectedPeer(); ok {
			status = "central " + peer.Address
			if rssi, err := p.SignalStrength(peer); err == nil {
				status += fmt.Sprintf(" rssi=%d", rssi)
			}
		}
		if err := p.WriteValue(v); err != nil {
			fmt.Printf("write %d failed: %v (%s)\n", v, err, status)
		} else {
			fmt.Printf("wrote %d (%s)\n", v, status)
		}
		time.Sleep(time.Second)
	}

	fmt.Println("\nDone!")
}
