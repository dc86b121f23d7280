package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/coolbeans/hunlaw/pkg/config"
	"github.com/coolbeans/hunlaw/pkg/semantic"
	"github.com/coolbeans/hunlaw/pkg/session"
)

func TestDocumentName(t *testing.T) {
	cases := map[string]string{
		"acts/2013-v.txt": "2013-v",
		"ptk.txt":         "ptk",
		"noext":           "noext",
	}
	for in, want := range cases {
		if got := documentName(in); got != want {
			t.Errorf("documentName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "")
	flags.Int("jobs", 1, "")
	flags.String("cache", "", "")
	if err := flags.Parse([]string{"--format", "json", "--jobs", "6"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.CachePath = "keep.db"
	override(flags, "format", &cfg.Format)
	override(flags, "jobs", &cfg.Jobs)
	override(flags, "cache", &cfg.CachePath)
	override(flags, "missing", &cfg.Abbreviations)

	if cfg.Format != "json" || cfg.Jobs != 6 {
		t.Errorf("override() = %+v, want format json and 6 jobs", cfg)
	}
	if cfg.CachePath != "keep.db" {
		t.Errorf("CachePath = %q, unchanged flag overrode it", cfg.CachePath)
	}
}

func TestOutputs(t *testing.T) {
	results := []session.Result{
		{Line: 1, Sentence: "a", Err: errors.New("boom")},
		{Line: 2, Sentence: "b"},
		{Line: 3, Sentence: "c", Info: semantic.Info{SpecialPhrase: &semantic.Repeal{}}},
	}
	out := outputs(results)
	if out[0].Error != "boom" || out[0].Info != nil {
		t.Errorf("failed result = %+v", out[0])
	}
	if out[1].Info != nil {
		t.Errorf("empty info kept: %+v", out[1])
	}
	if out[2].Info == nil {
		t.Errorf("info dropped: %+v", out[2])
	}
}

func TestEncode(t *testing.T) {
	defer func(saved config.Config) { cfg = saved }(cfg)

	v := []resultOutput{{Line: 1, Sentence: "Az 1. § hatályát veszti."}}
	cases := []struct {
		format string
		want   string
	}{
		{config.FormatJSON, `"sentence": "Az 1. § hatályát veszti."`},
		{config.FormatYAML, "sentence: Az 1. § hatályát veszti."},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			cfg.Format = tc.format
			var buf bytes.Buffer
			if err := encode(&buf, v); err != nil {
				t.Fatalf("encode() error = %v", err)
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Errorf("encode() = %q, want it to contain %q", buf.String(), tc.want)
			}
		})
	}
}
