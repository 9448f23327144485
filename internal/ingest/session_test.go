// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ingest

import (
	"context"
	"io"
	"log"
	"net"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relabs-tech/accel_plotter/internal/accel"
	"github.com/relabs-tech/accel_plotter/internal/window"
)

type countingConn struct {
	net.Conn
	closes *atomic.Int32
}

func (c *countingConn) Close() error {
	c.closes.Add(1)
	return c.Conn.Close()
}

type countingListener struct {
	net.Listener
	closes     atomic.Int32
	connCloses atomic.Int32
}

func (l *countingListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &countingConn{Conn: conn, closes: &l.connCloses}, nil
}

func (l *countingListener) Close() error {
	l.closes.Add(1)
	return l.Listener.Close()
}

var _ = Describe("Session", func() {
	var (
		buf     *window.Buffer
		session *Session
		counter *countingListener
		ctx     context.Context
		cancel  context.CancelFunc
	)

	BeforeEach(func() {
		var err error
		buf, err = window.NewBuffer(window.DefaultSize)
		Expect(err).NotTo(HaveOccurred())

		session = NewSession("127.0.0.1:0", buf, LoopOptions{
			Logger: log.New(io.Discard, "", 0),
		})
		session.listen = func(ctx context.Context, addr string) (net.Listener, error) {
			var lc net.ListenConfig
			ln, err := lc.Listen(ctx, "tcp", addr)
			if err != nil {
				return nil, err
			}
			counter = &countingListener{Listener: ln}
			return counter, nil
		}

		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		Expect(session.Listen(ctx)).To(Succeed())
	})

	AfterEach(func() {
		cancel()
	})

	serve := func() <-chan error {
		done := make(chan error, 1)
		go func() { done <- session.Serve(ctx) }()
		return done
	}

	It("should ingest one sample and shut down cleanly when the sensor hangs up", func() {
		done := serve()

		conn, err := net.Dial("tcp", session.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		_, err = conn.Write([]byte("Accel: X=100 Y=-200 Z=300\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(conn.Close()).To(Succeed())

		Eventually(done, 5*time.Second).Should(Receive(BeNil()))

		snap := buf.Snapshot()
		Expect(snap.Pushed).To(BeEquivalentTo(1))
		Expect(snap.Latest).To(Equal(accel.Sample{X: 100, Y: -200, Z: 300}))
		Expect(snap.X).To(HaveLen(window.DefaultSize))
		Expect(snap.X[window.DefaultSize-1]).To(Equal(100))

		Expect(session.State()).To(Equal(ConnectionClosed))
		Expect(session.Stats().Accepted).To(BeEquivalentTo(1))
		Expect(counter.closes.Load()).To(BeEquivalentTo(1))
		Expect(counter.connCloses.Load()).To(BeEquivalentTo(1))
	})

	It("should reassemble records split across writes", func() {
		done := serve()

		conn, err := net.Dial("tcp", session.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		for _, chunk := range []string{"Accel: X=1", "1 Y=22 Z=33\nAccel: X=4", "4 Y=55 Z=66\n"} {
			_, err = conn.Write([]byte(chunk))
			Expect(err).NotTo(HaveOccurred())
			time.Sleep(10 * time.Millisecond)
		}
		Expect(conn.Close()).To(Succeed())

		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
		Expect(buf.Series(window.X)[window.DefaultSize-2:]).To(Equal([]int{11, 44}))
		Expect(buf.Series(window.Z)[window.DefaultSize-2:]).To(Equal([]int{33, 66}))
	})

	It("should stop accepting once the sensor is connected", func() {
		done := serve()

		conn, err := net.Dial("tcp", session.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("Accel: X=1 Y=2 Z=3\n"))
		Expect(err).NotTo(HaveOccurred())
		Eventually(buf.Pushed, 5*time.Second).Should(BeEquivalentTo(1))

		_, err = net.DialTimeout("tcp", session.Addr().String(), time.Second)
		Expect(err).To(HaveOccurred())
		Expect(counter.closes.Load()).To(BeEquivalentTo(1))

		Expect(conn.Close()).To(Succeed())
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
		Expect(counter.closes.Load()).To(BeEquivalentTo(1))
	})

	It("should release the listener when cancelled before a sensor connects", func() {
		done := serve()

		cancel()

		Eventually(done, 5*time.Second).Should(Receive(MatchError(context.Canceled)))
		Expect(counter.closes.Load()).To(BeEquivalentTo(1))
		Expect(counter.connCloses.Load()).To(BeZero())
	})

	It("should release the connection when cancelled mid-stream", func() {
		done := serve()

		conn, err := net.Dial("tcp", session.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()
		_, err = conn.Write([]byte("Accel: X=1 Y=2 Z=3\n"))
		Expect(err).NotTo(HaveOccurred())
		Eventually(buf.Pushed, 5*time.Second).Should(BeEquivalentTo(1))

		cancel()

		Eventually(done, 5*time.Second).Should(Receive(MatchError(context.Canceled)))
		Expect(counter.closes.Load()).To(BeEquivalentTo(1))
		Expect(counter.connCloses.Load()).To(BeEquivalentTo(1))
	})
})

var _ = Describe("ServeStream", func() {
	It("should run the loop over a stream and close it once", func() {
		buf, err := window.NewBuffer(3)
		Expect(err).NotTo(HaveOccurred())

		server, client := net.Pipe()
		counted := &countingConn{Conn: server, closes: new(atomic.Int32)}

		go func() {
			defer client.Close()
			_, _ = client.Write([]byte("Accel: X=7 Y=8 Z=9\n"))
		}()

		stats, err := ServeStream(context.Background(), counted, buf, LoopOptions{
			Logger: log.New(io.Discard, "", 0),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Accepted).To(BeEquivalentTo(1))
		Expect(buf.Snapshot().Latest).To(Equal(accel.Sample{X: 7, Y: 8, Z: 9}))
		Expect(counted.closes.Load()).To(BeEquivalentTo(1))
	})
})
