// Package aecsim drives the scene-change engine, the adaptive encode
// controller and the bitrate controller over a synthetic sequence of
// luma planes, printing the per-frame decisions each stage makes.
package main

import (
	"flag"
	"io"
	"math/rand"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/aenc"
	aencconfig "github.com/ausocean/aec/aenc/config"
	"github.com/ausocean/aec/brc"
	brcconfig "github.com/ausocean/aec/brc/config"
	"github.com/ausocean/aec/stats"
	"github.com/ausocean/utils/logging"
)

const (
	logPath      = "aecsim.log"
	logMaxSize   = 10 // MB
	logMaxBackup = 2
	logMaxAge    = 7 // days
)

func main() {
	frames := flag.Int("frames", 90, "number of synthetic frames to drive through the pipeline")
	targetKbps := flag.Uint("kbps", 4000, "BRC target bitrate in kbit/s")
	gopSize := flag.Uint("gop", 32, "GOP picture size")
	sceneChangeEvery := flag.Int("scene-change-every", 30, "insert a scene change every N frames (0 disables)")
	flag.Parse()

	fileLog := &lumberjack.Logger{Filename: logPath, MaxSize: logMaxSize, MaxBackups: logMaxBackup, MaxAge: logMaxAge}
	log := logging.New(logging.Info, io.MultiWriter(fileLog, os.Stdout), false)
	log.Info("starting aecsim", "frames", *frames, "targetKbps", *targetKbps)

	aencParams := aencconfig.Params{
		FrameWidth: 1920, FrameHeight: 1080,
		SrcFrameWidth: 1920, SrcFrameHeight: 1080,
		ColorFormat:    aec.NV12,
		GopPicSize:     uint32(*gopSize),
		MinGopSize:     1,
		MaxGopSize:     uint32(*gopSize),
		MaxIDRDist:     uint32(*gopSize),
		MaxMiniGopSize: 4,
		CodecID:        aec.AVC,
		NumRefP:        2,
		AGOP:           true,
		ALTR:           true,
		AREF:           true,
		APQ:            true,
	}
	controller, err := aenc.NewController(aencParams, log)
	if err != nil {
		log.Fatal("invalid aenc params", "error", err)
	}

	brcParams := brcconfig.Params{
		CodecID:         aencParams.CodecID,
		RateControlMode: brcconfig.CBR,
		TargetKbps:      uint32(*targetKbps),
		MaxKbps:         uint32(*targetKbps),
		FrameRate:       30,
		GopPicSize:      aencParams.GopPicSize,
		CpbSizeBits:     uint32(*targetKbps) * 1000 * 2,
		InitDelayBits:   uint32(*targetKbps) * 1000,
		WindowSize:      30,
		MaxRecodes:      2,
		MaxRecodesPanic: 4,
	}
	rateController, err := brc.New(brcParams)
	if err != nil {
		log.Fatal("invalid brc params", "error", err)
	}

	rng := rand.New(rand.NewSource(1))
	prev := syntheticPlane(rng, 96)
	for poc := aec.POC(0); int(poc) < *frames; poc++ {
		baseline := byte(96)
		if *sceneChangeEvery > 0 && int(poc)%*sceneChangeEvery == 0 && poc != 0 {
			baseline = byte(40 + rng.Intn(160))
		}
		cur := syntheticPlane(rng, baseline)

		decision, ok, err := controller.ProcessFrame(poc, cur, prev)
		prev = cur
		if err != nil {
			log.Error("aenc ProcessFrame failed", "poc", poc, "error", err)
			continue
		}
		if !ok {
			continue
		}
		driveBRC(log, rateController, decision)
	}

	decisions, err := controller.Flush()
	if err != nil {
		log.Error("aenc Flush failed", "error", err)
	}
	for _, decision := range decisions {
		driveBRC(log, rateController, decision)
	}
}

// driveBRC runs one decision through the bitrate controller's two-phase
// protocol, faking an encoded size of three quarters of the allowed maximum
// frame size, independent of the chosen QP.
func driveBRC(log logging.Logger, rc *brc.BRC, d aenc.Decision) {
	ctrl, err := rc.GetFrameCtrl(brc.FrameParam{
		POC:          d.POC,
		Type:         d.Type,
		PyramidLayer: d.PyramidLayer,
		SceneChanged: d.SceneChanged,
		LongTerm:     d.LTR,
	})
	if err != nil {
		log.Error("brc GetFrameCtrl failed", "poc", d.POC, "error", err)
		return
	}

	codedBits := ctrl.MaxFrameSizeBits * 3 / 4
	status, newQP, err := rc.Update(d.POC, codedBits, ctrl.QP)
	if err != nil {
		log.Error("brc Update failed", "poc", d.POC, "error", err)
		return
	}

	log.Info("frame decision",
		"poc", d.POC, "type", d.Type, "miniGOP", d.MiniGopSize, "layer", d.PyramidLayer,
		"deltaQP", d.DeltaQP, "classAPQ", d.ClassAPQ, "brcQP", ctrl.QP, "brcStatus", status, "brcNewQP", newQP)

	if qm, ok := rc.QpMap(d.POC, d.PersistenceMap, 120, 68); ok {
		log.Info("per-block QP map built", "poc", d.POC, "blocks", len(qm.QP))
	}
}

// syntheticPlane builds a flat luma plane around baseline with light noise,
// standing in for a real decoded picture.
func syntheticPlane(rng *rand.Rand, baseline byte) *stats.Plane {
	p := &stats.Plane{
		Pix:    make([]byte, stats.PlaneWidth*stats.PlaneHeight),
		Width:  stats.PlaneWidth,
		Height: stats.PlaneHeight,
		Stride: stats.PlaneWidth,
	}
	for i := range p.Pix {
		n := rng.Intn(7) - 3
		v := int(baseline) + n
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		p.Pix[i] = byte(v)
	}
	return p
}
