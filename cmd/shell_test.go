package cmd

import (
	"encoding/json"
	"testing"

	"github.com/quietdns/hosttrie/test"
)

func TestServiceDomainUnmarshal(t *testing.T) {
	var sd ServiceDomain
	err := json.Unmarshal([]byte(`{"Service": "cache", "Domain": "example.com"}`), &sd)
	test.AssertNotError(t, err, "Failed to unmarshal ServiceDomain")
	test.AssertEquals(t, sd.Service, "cache")
	test.AssertEquals(t, sd.Domain, "example.com")
}

func TestSyslogConfigUnmarshal(t *testing.T) {
	var sc SyslogConfig
	err := json.Unmarshal([]byte(`{"StdoutLevel": 6, "SyslogLevel": 4}`), &sc)
	test.AssertNotError(t, err, "Failed to unmarshal SyslogConfig")
	test.AssertEquals(t, sc.StdoutLevel, 6)
	test.AssertEquals(t, sc.SyslogLevel, 4)
}
