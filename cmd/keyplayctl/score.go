package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/denizsincar29/keyplayer"
	"github.com/denizsincar29/keyplayer/httpapi"
)

// scoreFile mirrors the play request body. JSON files parse as YAML too.
type scoreFile struct {
	Notes []keyplayer.Note `yaml:"notes"`
	Speed *float64         `yaml:"speed"`
	Delay *float64         `yaml:"delay"`
	Loop  bool             `yaml:"loop"`
}

func loadScore(path string) (httpapi.PlayRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return httpapi.PlayRequest{}, fmt.Errorf("failed to read score: %w", err)
	}
	var sf scoreFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return httpapi.PlayRequest{}, fmt.Errorf("failed to parse score %s: %w", path, err)
	}
	if sf.Notes == nil {
		return httpapi.PlayRequest{}, fmt.Errorf("score %s has no notes", path)
	}
	return httpapi.PlayRequest{Notes: sf.Notes, Speed: sf.Speed, Delay: sf.Delay, Loop: sf.Loop}, nil
}

// playRequest loads the score named in args[0] and applies the optional
// speed, delay and loop arguments on top of it.
func playRequest(args []string) (httpapi.PlayRequest, error) {
	if len(args) == 0 {
		return httpapi.PlayRequest{}, fmt.Errorf("usage: play <score.yaml|score.json> [speed] [delay] [loop]")
	}
	req, err := loadScore(args[0])
	if err != nil {
		return req, err
	}
	if len(args) > 1 {
		speed, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return req, fmt.Errorf("bad speed %q: %w", args[1], err)
		}
		req.Speed = &speed
	}
	if len(args) > 2 {
		delay, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return req, fmt.Errorf("bad delay %q: %w", args[2], err)
		}
		req.Delay = &delay
	}
	if len(args) > 3 {
		if args[3] == "loop" {
			req.Loop = true
		} else if req.Loop, err = strconv.ParseBool(args[3]); err != nil {
			return req, fmt.Errorf("bad loop flag %q: %w", args[3], err)
		}
	}
	return req, nil
}
