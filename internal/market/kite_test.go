package market

import (
	"sync"
	"testing"
)

func TestInstrumentMapper(t *testing.T) {
	im := newInstrumentMapper()
	if im.loaded() {
		t.Fatal("Expected new mapper to be unloaded")
	}

	im.addMapping("RELIANCE", 738561)
	im.addMapping("INFY", 408065)
	im.markLoaded()

	tok, ok := im.getToken("RELIANCE")
	if !ok || tok != 738561 {
		t.Errorf("Expected token 738561, got %d (found=%v)", tok, ok)
	}
	if got := im.getSymbol(408065); got != "INFY" {
		t.Errorf("Expected INFY, got %s", got)
	}
	if _, ok := im.getToken("TCS"); ok {
		t.Error("Expected TCS to be missing")
	}
	if !im.loaded() {
		t.Error("Expected mapper to be loaded")
	}
}

func TestInstrumentMapperConcurrent(t *testing.T) {
	im := newInstrumentMapper()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			im.addMapping("SYM", uint32(i))
			im.getToken("SYM")
		}(i)
	}
	wg.Wait()

	if _, ok := im.getToken("SYM"); !ok {
		t.Error("Expected SYM to be mapped")
	}
}

func TestKiteSymbol(t *testing.T) {
	tests := map[string]string{
		"RELIANCE.NS": "RELIANCE",
		"TCS.BO":      "TCS",
		"INFY":        "INFY",
	}
	for in, want := range tests {
		if got := kiteSymbol(in); got != want {
			t.Errorf("Expected %s for %s, got %s", want, in, got)
		}
	}
}
