// vmc-probe - synthetic VMC traffic generator
//
// Sends a slow head sway, a blinking cycle and a drifting root position to
// a VMC receiver, for smoke-testing a vrigd instance end to end without a
// motion capture application.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avatarkit/go-vrig/pkg/vmc"
	"github.com/avatarkit/go-vrig/pkg/vrm"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:39539", "VMC receiver address")
	rate := flag.Float64("rate", 30, "frames per second")
	flag.Parse()

	sender, err := vmc.NewSender(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sending synthetic motion to %s at %.0f fps (Ctrl+C to stop)\n", *addr, *rate)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / *rate))
	defer ticker.Stop()

	start := time.Now()
	if err := sender.SendOK(true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for {
		select {
		case <-sigChan:
			fmt.Println("\nStopping probe")
			return
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()
			sendFrame(sender, t)
		}
	}
}

// sendFrame emits one synthetic performer frame at elapsed time t.
func sendFrame(s *vmc.Sender, t float64) {
	// Head sway: +-15 degrees of yaw over a 4 second period.
	yaw := 15 * math.Pi / 180 * math.Sin(2*math.Pi*t/4)
	s.SendBone(vrm.BoneHead, vrm.Vec3{}, vrm.QuatFromAxisAngle(0, 1, 0, yaw))
	s.SendBone(vrm.BoneNeck, vrm.Vec3{}, vrm.QuatFromAxisAngle(0, 1, 0, yaw/3))

	// Root drift: a small circle on the ground plane.
	s.SendRoot(vrm.Vec3{
		X: 0.05 * math.Cos(2*math.Pi*t/8),
		Z: 0.05 * math.Sin(2*math.Pi*t/8),
	}, vrm.IdentityQuat())

	// Blink: brief close every 3 seconds.
	blink := 0.0
	if phase := math.Mod(t, 3); phase < 0.15 {
		blink = math.Sin(phase / 0.15 * math.Pi)
	}
	s.SendBlend("Blink", blink)
	s.SendBlendApply()
}
