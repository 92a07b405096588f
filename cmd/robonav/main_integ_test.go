package main_test

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"robonav/internal/app/apps"
	"robonav/internal/app/cfg"

	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) uint16 {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return uint16(l.Addr().(*net.TCPAddr).Port)
}

func TestServerAndRobots(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip()
	}
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := apps.NewServerApp(cfg.NewAddrCfg("127.0.0.1", port), cfg.NewServerCfg(0, 4))
	require.NoError(t, err)
	served := make(chan error, 1)
	go func() { served <- s.Run(ctx, nil) }()

	// wait for the listener
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := apps.NewClientApp(
				cfg.NewAddrCfg("127.0.0.1", port),
				cfg.NewRobotCfg("robot", i%5, i%3+2, int64(i+1)),
			)
			if err != nil {
				errs <- err
				return
			}
			errs <- c.Run(ctx, nil)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cancel()
	require.NoError(t, <-served)
}
