package simdriver

import (
	"testing"

	"github.com/aluiziotomazelli/wifi-manager/internal/driver"
	"github.com/aluiziotomazelli/wifi-manager/internal/driver/drivertest"
)

func TestSimdriverConformance(t *testing.T) {
	drivertest.RunConformance(t, func() driver.Driver {
		return New(false)
	})
}
