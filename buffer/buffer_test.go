package buffer

import (
	"bytes"
	"errors"
	"log"
	"syscall"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Buffer", func() {
	const pageSize = 4096

	var (
		mockCtrl *gomock.Controller
		mapper   *MockMapper
		logBuf   *bytes.Buffer
		logger   *log.Logger
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mapper = NewMockMapper(mockCtrl)
		mapper.EXPECT().PageSize().Return(pageSize).AnyTimes()

		logBuf = new(bytes.Buffer)
		logger = log.New(logBuf, "", 0)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should reject a size that is not a multiple of the page size", func() {
		_, err := Acquire(pageSize+1, WithMapper(mapper), WithLogger(logger))

		Expect(err).To(MatchError(ErrInvalidSize))
	})

	It("should reject a zero size", func() {
		_, err := Acquire(0, WithMapper(mapper), WithLogger(logger))

		Expect(err).To(MatchError(ErrInvalidSize))
	})

	It("should fail with an allocation error when mapping fails", func() {
		mapper.EXPECT().Map(4 * pageSize).Return(nil, syscall.ENOMEM)

		b, err := Acquire(4*pageSize, WithMapper(mapper), WithLogger(logger))

		Expect(b).To(BeNil())

		var allocErr *AllocationError
		Expect(errors.As(err, &allocErr)).To(BeTrue())
		Expect(allocErr.Size).To(Equal(4 * pageSize))
		Expect(errors.Is(err, syscall.ENOMEM)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(syscall.ENOMEM.Error()))
	})

	It("should pin and fault in every page", func() {
		region := make([]byte, 4*pageSize)
		mapper.EXPECT().Map(4 * pageSize).Return(region, nil)
		mapper.EXPECT().Lock(region).Return(nil)

		b, err := Acquire(4*pageSize, WithMapper(mapper), WithLogger(logger))

		Expect(err).ToNot(HaveOccurred())
		Expect(b.Pinned()).To(BeTrue())
		Expect(b.PinErr()).ToNot(HaveOccurred())
		Expect(b.Size()).To(Equal(4 * pageSize))
		Expect(b.PageSize()).To(Equal(pageSize))
		for i := 0; i < len(region); i++ {
			if i%pageSize == 0 {
				Expect(region[i]).To(Equal(byte(FaultInPattern)))
			} else {
				Expect(region[i]).To(Equal(byte(0)))
			}
		}
		Expect(logBuf.String()).To(BeEmpty())
	})

	It("should warn once and continue when pinning fails", func() {
		region := make([]byte, 2*pageSize)
		mapper.EXPECT().Map(2 * pageSize).Return(region, nil)
		mapper.EXPECT().Lock(region).Return(syscall.EPERM)

		b, err := Acquire(2*pageSize, WithMapper(mapper), WithLogger(logger))

		Expect(err).ToNot(HaveOccurred())
		Expect(b.Pinned()).To(BeFalse())
		Expect(b.PinErr()).To(MatchError(syscall.EPERM))
		Expect(logBuf.String()).To(ContainSubstring("mlock failed"))
		Expect(logBuf.String()).To(ContainSubstring("(continuing)"))
		Expect(bytes.Count(logBuf.Bytes(), []byte("\n"))).To(Equal(1))
		Expect(region[pageSize]).To(Equal(byte(FaultInPattern)))
	})

	It("should not pin when pinning is disabled", func() {
		region := make([]byte, pageSize)
		mapper.EXPECT().Map(pageSize).Return(region, nil)

		b, err := Acquire(pageSize,
			WithMapper(mapper), WithLogger(logger), WithoutPinning())

		Expect(err).ToNot(HaveOccurred())
		Expect(b.Pinned()).To(BeFalse())
		Expect(b.PinErr()).ToNot(HaveOccurred())
	})

	It("should unpin and unmap exactly once on release", func() {
		region := make([]byte, pageSize)
		mapper.EXPECT().Map(pageSize).Return(region, nil)
		mapper.EXPECT().Lock(region).Return(nil)
		mapper.EXPECT().Unlock(region).Return(nil)
		mapper.EXPECT().Unmap(region).Return(nil)

		b, err := Acquire(pageSize, WithMapper(mapper), WithLogger(logger))
		Expect(err).ToNot(HaveOccurred())

		Expect(b.Release()).To(Succeed())
		Expect(b.Release()).To(Succeed())
		Expect(b.Bytes()).To(BeNil())
		Expect(b.Pinned()).To(BeFalse())
	})

	It("should report unmap failures on release", func() {
		region := make([]byte, pageSize)
		mapper.EXPECT().Map(pageSize).Return(region, nil)
		mapper.EXPECT().Unmap(region).Return(syscall.EINVAL)

		b, err := Acquire(pageSize,
			WithMapper(mapper), WithLogger(logger), WithoutPinning())
		Expect(err).ToNot(HaveOccurred())

		err = b.Release()
		Expect(err).To(MatchError(syscall.EINVAL))
		Expect(err.Error()).To(ContainSubstring("munmap failed"))
	})
})
