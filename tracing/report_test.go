package tracing

import (
	"bytes"
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memblink/bitstream"
	"github.com/sarchlab/memblink/datarecording"
	"github.com/sarchlab/memblink/timing"
)

var _ = Describe("RunReport", func() {
	endOf := func(index int, bit bitstream.Bit, start, end timing.Instant) timing.HookCtx {
		return timing.HookCtx{
			Pos: timing.HookPosWindowEnd,
			Window: timing.Window{
				Index:    index,
				Bit:      bit,
				Start:    start,
				Deadline: start + 10*ms,
				End:      end,
			},
			Stats: timing.ActivityStats{Touches: uint64(index + 1)},
		}
	}

	It("should read back and summarize a recorded run", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		writer := datarecording.NewSQLiteWriter(path)
		Expect(writer.Init()).To(Succeed())

		tracer := NewWindowTracer("run-a", writer)
		tracer.Func(endOf(0, bitstream.One, 0, 12*ms))
		tracer.Func(endOf(1, bitstream.Zero, 12*ms, 22*ms))
		tracer.Func(endOf(2, bitstream.One, 22*ms, 33*ms))

		writer.InsertData(WindowTableName, WindowRow{
			RunID:    "run-b",
			Phase:    "idle",
			StartNs:  int64(100 * ms),
			EndNs:    int64(110 * ms),
			LengthNs: int64(10 * ms),
		})
		Expect(writer.Close()).To(Succeed())

		reader, err := datarecording.NewReader(writer.Filename())
		Expect(err).ToNot(HaveOccurred())
		defer reader.Close()

		rows, err := ReadWindows(context.Background(), reader, "run-a")
		Expect(err).ToNot(HaveOccurred())
		Expect(rows).To(HaveLen(3))

		report := Summarize(rows)
		Expect(report.RunID).To(Equal("run-a"))
		Expect(report.Windows).To(Equal(3))
		Expect(report.Bits).To(Equal("101"))
		Expect(report.Active.Windows).To(Equal(2))
		Expect(report.Active.MinLength).To(Equal(11 * time.Millisecond))
		Expect(report.Active.MaxLength).To(Equal(12 * time.Millisecond))
		Expect(report.Active.MeanLength).To(Equal(11500 * time.Microsecond))
		Expect(report.Active.MaxOvershoot).To(Equal(2 * time.Millisecond))
		Expect(report.Active.Touches).To(Equal(uint64(4)))
		Expect(report.Idle.Windows).To(Equal(1))
		Expect(report.Idle.MeanLength).To(Equal(10 * time.Millisecond))

		all, err := ReadWindows(context.Background(), reader, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(all).To(HaveLen(4))

		reports := SummarizeRuns(all)
		Expect(reports).To(HaveLen(2))
		Expect(reports[0].RunID).To(Equal("run-a"))
		Expect(reports[0].Windows).To(Equal(3))
		Expect(reports[1].RunID).To(Equal("run-b"))
		Expect(reports[1].Windows).To(Equal(1))
		Expect(reports[1].Bits).To(Equal("0"))

		out := new(bytes.Buffer)
		report.Print(out)
		Expect(out.String()).To(ContainSubstring("run run-a: 3 windows"))
		Expect(out.String()).To(ContainSubstring("bits: 101"))
	})

	It("should not merge windows of different runs", func() {
		rows := []WindowRow{
			{RunID: "x", Bit: 1, LengthNs: int64(10 * ms)},
			{RunID: "y", Bit: 0, LengthNs: int64(10 * ms)},
			{RunID: "x", Bit: 0, LengthNs: int64(10 * ms)},
		}

		reports := SummarizeRuns(rows)

		Expect(reports).To(HaveLen(2))
		Expect(reports[0].RunID).To(Equal("x"))
		Expect(reports[0].Bits).To(Equal("10"))
		Expect(reports[1].RunID).To(Equal("y"))
		Expect(reports[1].Bits).To(Equal("0"))
		Expect(SummarizeRuns(nil)).To(BeEmpty())
	})

	It("should summarize an empty run", func() {
		report := Summarize(nil)

		Expect(report.Windows).To(BeZero())
		Expect(report.Active.MeanLength).To(BeZero())
		Expect(report.Bits).To(BeEmpty())
	})
})
