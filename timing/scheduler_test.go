package timing

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memblink/bitstream"
)

type recordingHook struct {
	ctxs []HookCtx
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

var _ = Describe("Scheduler", func() {
	const ms = Instant(time.Millisecond)

	var (
		mockCtrl  *gomock.Controller
		clock     *MockClock
		modulator *MockModulator
		waiter    *MockWaiter
		scheduler *Scheduler
		buf       []byte
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		clock = NewMockClock(mockCtrl)
		modulator = NewMockModulator(mockCtrl)
		waiter = NewMockWaiter(mockCtrl)
		scheduler = NewScheduler(clock, modulator, waiter)
		buf = make([]byte, 256)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	mustStream := func(text string, policy bitstream.Policy) *bitstream.Stream {
		bits, err := bitstream.Parse(text)
		Expect(err).ToNot(HaveOccurred())

		s, err := bitstream.New(bits, policy)
		Expect(err).ToNot(HaveOccurred())

		return s
	}

	It("should reject an empty buffer before any window", func() {
		_, err := scheduler.Run(nil, mustStream("1", bitstream.Finite),
			Uniform(time.Second), nil)

		Expect(err).To(MatchError(ErrEmptyBuffer))
	})

	It("should reject a nil source", func() {
		_, err := scheduler.Run(buf, nil, Uniform(time.Second), nil)

		Expect(err).To(MatchError(ErrNoSource))
	})

	It("should reject a zero duration", func() {
		_, err := scheduler.Run(buf, mustStream("10", bitstream.Finite),
			Durations{Active: time.Second}, nil)

		Expect(err).To(MatchError(ErrInvalidDuration))
	})

	It("should dispatch each bit with a deadline from its own start", func() {
		src := mustStream("101", bitstream.Finite)

		gomock.InOrder(
			clock.EXPECT().Now().Return(0*ms),
			modulator.EXPECT().Sweep(buf, 100*ms).
				Return(ActivityStats{Touches: 10, Passes: 1}),
			clock.EXPECT().Now().Return(103*ms),

			clock.EXPECT().Now().Return(105*ms),
			waiter.EXPECT().WaitUntil(205*ms),
			clock.EXPECT().Now().Return(206*ms),

			clock.EXPECT().Now().Return(207*ms),
			modulator.EXPECT().Sweep(buf, 307*ms).
				Return(ActivityStats{Touches: 7}),
			clock.EXPECT().Now().Return(307*ms),
		)

		summary, err := scheduler.Run(buf, src, Uniform(100*time.Millisecond), nil)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Windows).To(Equal(3))
		Expect(summary.Active).To(Equal(2))
		Expect(summary.Idle).To(Equal(1))
		Expect(summary.Touches).To(Equal(uint64(17)))
		Expect(summary.MaxOvershoot).To(Equal(3 * time.Millisecond))
	})

	It("should use the per-phase durations", func() {
		gomock.InOrder(
			clock.EXPECT().Now().Return(0*ms),
			modulator.EXPECT().Sweep(buf, 10000*ms),
			clock.EXPECT().Now().Return(10000*ms),
			clock.EXPECT().Now().Return(10000*ms),
			waiter.EXPECT().WaitUntil(15000*ms),
			clock.EXPECT().Now().Return(15000*ms),
		)

		summary, err := scheduler.Run(buf, bitstream.Pattern(),
			Durations{Active: 10 * time.Second, Idle: 5 * time.Second},
			AfterWindows(2))

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Windows).To(Equal(2))
	})

	It("should keep a cyclic source periodic until the stop condition", func() {
		src := mustStream("110", bitstream.Cyclic)
		now := Instant(0)
		clock.EXPECT().Now().DoAndReturn(func() Instant {
			now += ms
			return now
		}).AnyTimes()
		modulator.EXPECT().Sweep(buf, gomock.Any()).Times(6)
		waiter.EXPECT().WaitUntil(gomock.Any()).Times(3)

		hook := &recordingHook{}
		scheduler.AcceptHook(hook)

		summary, err := scheduler.Run(buf, src, Uniform(time.Millisecond),
			AfterWindows(9))

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Windows).To(Equal(9))

		var bits []bitstream.Bit
		for _, ctx := range hook.ctxs {
			if ctx.Pos == HookPosWindowEnd {
				bits = append(bits, ctx.Window.Bit)
			}
		}
		Expect(bits).To(HaveLen(9))
		for k := 0; k+3 < len(bits); k++ {
			Expect(bits[k]).To(Equal(bits[k+3]))
		}
	})

	It("should invoke hooks around every window", func() {
		src := mustStream("1", bitstream.Finite)
		gomock.InOrder(
			clock.EXPECT().Now().Return(5*ms),
			modulator.EXPECT().Sweep(buf, 15*ms).
				Return(ActivityStats{Touches: 4, Passes: 2}),
			clock.EXPECT().Now().Return(16*ms),
		)

		hook := &recordingHook{}
		scheduler.AcceptHook(hook)

		_, err := scheduler.Run(buf, src, Uniform(10*time.Millisecond), nil)

		Expect(err).ToNot(HaveOccurred())
		Expect(hook.ctxs).To(HaveLen(2))

		start := hook.ctxs[0]
		Expect(start.Pos).To(BeIdenticalTo(HookPosWindowStart))
		Expect(start.Domain).To(BeIdenticalTo(scheduler))
		Expect(start.Window.Start).To(Equal(5 * ms))
		Expect(start.Window.Deadline).To(Equal(15 * ms))

		end := hook.ctxs[1]
		Expect(end.Pos).To(BeIdenticalTo(HookPosWindowEnd))
		Expect(end.Window.End).To(Equal(16 * ms))
		Expect(end.Window.Length()).To(Equal(11 * time.Millisecond))
		Expect(end.Window.Overshoot()).To(Equal(time.Millisecond))
		Expect(end.Stats).To(Equal(ActivityStats{Touches: 4, Passes: 2}))
	})

	It("should panic on a duplicated hook", func() {
		hook := &recordingHook{}
		scheduler.AcceptHook(hook)

		Expect(func() { scheduler.AcceptHook(hook) }).To(Panic())
		Expect(scheduler.NumHooks()).To(Equal(1))
	})

	It("should stop between windows once cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		src := mustStream("0", bitstream.Cyclic)

		clock.EXPECT().Now().Return(0 * ms).Times(2)
		waiter.EXPECT().WaitUntil(ms).Do(func(Instant) { cancel() })

		summary, err := scheduler.Run(buf, src, Uniform(time.Millisecond),
			UntilCancelled(ctx))

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Windows).To(Equal(1))
	})
})

var _ = Describe("MonotonicClock", func() {
	It("should never go backwards", func() {
		var clock MonotonicClock

		prev := clock.Now()
		for i := 0; i < 1000; i++ {
			now := clock.Now()
			Expect(now).To(BeNumerically(">=", prev))
			prev = now
		}
	})

	It("should advance with wall time", func() {
		var clock MonotonicClock

		before := clock.Now()
		time.Sleep(5 * time.Millisecond)

		Expect(clock.Now().Sub(before)).To(BeNumerically(">=", 5*time.Millisecond))
	})
})
