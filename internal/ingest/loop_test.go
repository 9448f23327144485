// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/relabs-tech/accel_plotter/internal/accel"
	"github.com/relabs-tech/accel_plotter/internal/metrics"
	"github.com/relabs-tech/accel_plotter/internal/window"
)

var _ = Describe("Loop", func() {
	var (
		mockCtrl *gomock.Controller
		display  *MockRedrawer
		sink     *MockSampleSink
		observer *MockObserver
		buf      *window.Buffer
		out      *bytes.Buffer
		opts     LoopOptions
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		display = NewMockRedrawer(mockCtrl)
		sink = NewMockSampleSink(mockCtrl)
		observer = NewMockObserver(mockCtrl)

		var err error
		buf, err = window.NewBuffer(4)
		Expect(err).NotTo(HaveOccurred())

		out = new(bytes.Buffer)
		opts = LoopOptions{
			Display:  display,
			Sinks:    []SampleSink{sink},
			Observer: observer,
			Logger:   log.New(out, "", 0),
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newLoop := func(input string) *Loop {
		return NewLoop(strings.NewReader(input), buf, opts)
	}

	It("should push a parsed sample, redraw and publish it", func() {
		sample := accel.Sample{X: 100, Y: -200, Z: 300}
		observer.EXPECT().ObserveLine(metrics.ResultAccepted)
		display.EXPECT().
			Redraw(gomock.Any()).
			DoAndReturn(func(snap window.Snapshot) error {
				Expect(snap.X).To(Equal([]int{0, 0, 0, 100}))
				Expect(snap.Y).To(Equal([]int{0, 0, 0, -200}))
				Expect(snap.Z).To(Equal([]int{0, 0, 0, 300}))
				return nil
			})
		sink.EXPECT().Publish(sample).Return(nil)

		l := newLoop("")
		state, err := l.ProcessLine("Accel: X=100 Y=-200 Z=300")

		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal(SampleAccepted))
		Expect(buf.Snapshot().Latest).To(Equal(sample))
		Expect(out.String()).To(ContainSubstring("received: Accel: X=100 Y=-200 Z=300"))
	})

	It("should leave the buffer untouched for lines without the marker", func() {
		observer.EXPECT().ObserveLine(metrics.ResultIgnored)

		l := newLoop("")
		before := buf.Snapshot()
		state, err := l.ProcessLine("Gyro: X=1 Y=2 Z=3")

		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal(LineIgnored))
		Expect(buf.Snapshot()).To(Equal(before))
		Expect(out.String()).NotTo(ContainSubstring("warning"))
	})

	It("should warn and discard a malformed record", func() {
		observer.EXPECT().ObserveLine(metrics.ResultRejected)

		l := newLoop("")
		before := buf.Snapshot()
		state, err := l.ProcessLine("Accel: X=12 Y=abc Z=34")

		var perr *accel.ParseError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(state).To(Equal(SampleRejected))
		Expect(buf.Snapshot()).To(Equal(before))
		Expect(out.String()).To(ContainSubstring("warning: could not parse acceleration data"))
	})

	It("should keep going when the display fails", func() {
		observer.EXPECT().ObserveLine(metrics.ResultAccepted).Times(2)
		observer.EXPECT().ObserveDisplayError()
		gomock.InOrder(
			display.EXPECT().Redraw(gomock.Any()).Return(errors.New("window gone")),
			display.EXPECT().Redraw(gomock.Any()).Return(nil),
		)
		sink.EXPECT().Publish(gomock.Any()).Return(nil).Times(2)

		l := newLoop("Accel: X=1 Y=1 Z=1\nAccel: X=2 Y=2 Z=2\n")
		Expect(l.Run(context.Background())).To(Succeed())

		Expect(buf.Series(window.X)).To(Equal([]int{0, 0, 1, 2}))
		Expect(l.Stats().DisplayErrors).To(BeEquivalentTo(1))
		Expect(l.Stats().Accepted).To(BeEquivalentTo(2))
	})

	It("should report sink failures without dropping the sample", func() {
		observer.EXPECT().ObserveLine(metrics.ResultAccepted)
		display.EXPECT().Redraw(gomock.Any()).Return(nil)
		sink.EXPECT().Publish(gomock.Any()).Return(errors.New("broker down"))

		l := newLoop("")
		state, err := l.ProcessLine("Accel: X=5 Y=6 Z=7")

		var serr *SinkError
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(state).To(Equal(SampleAccepted))
		Expect(buf.Snapshot().Latest).To(Equal(accel.Sample{X: 5, Y: 6, Z: 7}))
		Expect(l.Stats().SinkErrors).To(BeEquivalentTo(1))
	})

	It("should process a mixed stream and close cleanly on EOF", func() {
		observer.EXPECT().ObserveLine(metrics.ResultAccepted).Times(2)
		observer.EXPECT().ObserveLine(metrics.ResultIgnored).Times(2)
		observer.EXPECT().ObserveLine(metrics.ResultRejected)
		display.EXPECT().Redraw(gomock.Any()).Return(nil).Times(2)
		sink.EXPECT().Publish(gomock.Any()).Return(nil).Times(2)

		l := newLoop("STM32 booting\n" +
			"Accel: X=10 Y=20 Z=30\n" +
			"Accel: X=1 Y=oops Z=3\n" +
			"\n" +
			"Accel: X=-10 Y=-20 Z=-30")

		Expect(l.Run(context.Background())).To(Succeed())
		Expect(l.State()).To(Equal(ConnectionClosed))
		Expect(l.Stats()).To(Equal(Stats{Lines: 5, Accepted: 2, Rejected: 1, Ignored: 2}))
		Expect(buf.Series(window.Z)).To(Equal([]int{0, 0, 30, -30}))
		Expect(out.String()).To(ContainSubstring("connection closed by peer"))
	})

	It("should reject over-long lines and continue", func() {
		observer.EXPECT().ObserveLine(metrics.ResultRejected)
		observer.EXPECT().ObserveLine(metrics.ResultAccepted)
		display.EXPECT().Redraw(gomock.Any()).Return(nil)
		sink.EXPECT().Publish(gomock.Any()).Return(nil)

		opts.MaxLineLength = 64
		l := newLoop("Accel: X=" + strings.Repeat("1", 100) + " Y=1 Z=1\nAccel: X=4 Y=5 Z=6\n")

		Expect(l.Run(context.Background())).To(Succeed())
		Expect(l.Stats().Rejected).To(BeEquivalentTo(1))
		Expect(buf.Snapshot().Latest).To(Equal(accel.Sample{X: 4, Y: 5, Z: 6}))
	})

	It("should stop with an IOError on a read failure", func() {
		l := NewLoop(iotest.ErrReader(io.ErrUnexpectedEOF), buf, opts)

		err := l.Run(context.Background())

		var ioErr *IOError
		Expect(errors.As(err, &ioErr)).To(BeTrue())
		Expect(ioErr.Op).To(Equal("read"))
		Expect(errors.Is(err, io.ErrUnexpectedEOF)).To(BeTrue())
		Expect(l.State()).To(Equal(ConnectionClosed))
		Expect(out.String()).To(ContainSubstring("error: read:"))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		l := newLoop("Accel: X=1 Y=1 Z=1\n")
		Expect(l.Run(ctx)).To(MatchError(context.Canceled))
		Expect(buf.Pushed()).To(BeZero())
	})

	It("should work without display, sinks or observer", func() {
		l := NewLoop(strings.NewReader("Accel: X=1 Y=2 Z=3\n"), buf, LoopOptions{Logger: log.New(io.Discard, "", 0)})

		Expect(l.Run(context.Background())).To(Succeed())
		Expect(buf.Snapshot().Latest).To(Equal(accel.Sample{X: 1, Y: 2, Z: 3}))
	})
})

var _ = Describe("State", func() {
	It("should have readable names", func() {
		Expect(WaitingForData.String()).To(Equal("waiting_for_data"))
		Expect(SampleRejected.String()).To(Equal("sample_rejected"))
		Expect(ConnectionClosed.String()).To(Equal("connection_closed"))
		Expect(State(42).String()).To(Equal("unknown"))
	})
})
