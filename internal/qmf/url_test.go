package qmf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw  string
		want BrokerURL
		addr string
	}{
		{raw: "localhost", want: BrokerURL{Host: "localhost", Port: 5672}, addr: "amqp://localhost:5672"},
		{raw: "broker:5673", want: BrokerURL{Host: "broker", Port: 5673}, addr: "amqp://broker:5673"},
		{raw: "guest/guest@broker", want: BrokerURL{Host: "broker", Port: 5672, Username: "guest", Password: "guest"}, addr: "amqp://broker:5672"},
		{raw: "amqp:tcp:10.0.0.1:5672", want: BrokerURL{Host: "10.0.0.1", Port: 5672}, addr: "amqp://10.0.0.1:5672"},
		{raw: "amqp:ssl:broker:5671", want: BrokerURL{Host: "broker", Port: 5671, TLS: true}, addr: "amqps://broker:5671"},
		{raw: "amqp://admin:pw@broker:5672/", want: BrokerURL{Host: "broker", Port: 5672, Username: "admin", Password: "pw"}, addr: "amqp://broker:5672"},
		{raw: "[::1]:5672", want: BrokerURL{Host: "::1", Port: 5672}, addr: "amqp://[::1]:5672"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.addr, got.Address())
		})
	}
}

func TestParseURL_Errors(t *testing.T) {
	for _, raw := range []string{"", "   ", "broker:notaport", "broker:0", "user@:5672"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseURL(raw)
			require.Error(t, err)
		})
	}
}
