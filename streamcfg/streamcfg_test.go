package streamcfg

import "testing"

func validConfig() Config {
	return Config{
		SampleRateHz:        160,
		WindowLengthSamples: 160,
		HopSamples:          80,
		Channels:            64,
		DType:               Float32,
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsHopGreaterThanWindow(t *testing.T) {
	c := validConfig()
	c.HopSamples = c.WindowLengthSamples + 1
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for H > W")
	}
}

func TestValidateRejectsZeroFields(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.SampleRateHz = 0 },
		func(c *Config) { c.WindowLengthSamples = 0 },
		func(c *Config) { c.HopSamples = 0 },
		func(c *Config) { c.Channels = 0 },
	} {
		c := validConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error for mutated config %+v", c)
		}
	}
}

func TestValidateRejectsOverflowingProduct(t *testing.T) {
	c := validConfig()
	c.WindowLengthSamples = 1 << 31
	c.Channels = 1 << 31
	if err := c.Validate(); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestWindowAndHopBytes(t *testing.T) {
	c := validConfig()
	if got, want := c.WindowBytes(), uint64(160*64*4); got != want {
		t.Fatalf("WindowBytes() = %d, want %d", got, want)
	}
	if got, want := c.HopBytes(), uint64(80*64*4); got != want {
		t.Fatalf("HopBytes() = %d, want %d", got, want)
	}
}
