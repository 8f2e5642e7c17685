package m3table_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/phoenixbound/m3table"
)

var _ = Describe("Writer", func() {
	var buf *bytes.Buffer
	var subject *m3table.Writer

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		subject = m3table.NewWriter(buf)
	})

	AfterEach(func() {
		_ = subject.Close()
	})

	It("should write empty", func() {
		Expect(subject.Close()).To(Succeed())
		Expect(buf.Bytes()).To(Equal([]byte{0, 0, 0, 0, 8, 0, 0, 0}))
	})

	It("should write in index order", func() {
		Expect(subject.Append([]byte("abc"))).To(Succeed())
		Expect(subject.AppendAbsent()).To(Succeed())
		Expect(subject.Append([]byte("de"))).To(Succeed())
		Expect(subject.NumSlots()).To(Equal(3))
		Expect(buf.Len()).To(Equal(0))

		Expect(subject.Close()).To(Succeed())
		Expect(buf.Bytes()).To(Equal(rawTable(3, []uint32{20, 0, 23, 25}, []byte("abcde"))))
	})

	It("should write the size sentinel", func() {
		rnd := rand.New(rand.NewSource(1))
		for i := 0; i < 200; i++ {
			if rnd.Intn(4) == 0 {
				Expect(subject.AppendAbsent()).To(Succeed())
				continue
			}
			val := make([]byte, 1+rnd.Intn(300))
			_, err := rnd.Read(val)
			Expect(err).NotTo(HaveOccurred())
			Expect(subject.Append(val)).To(Succeed())
		}
		Expect(subject.Close()).To(Succeed())

		table := buf.Bytes()
		Expect(binary.LittleEndian.Uint32(table)).To(Equal(uint32(200)))
		Expect(binary.LittleEndian.Uint32(table[4+200*4:])).To(Equal(uint32(len(table))))
	})

	It("should reject empty payloads", func() {
		Expect(subject.Append(nil)).To(MatchError(m3table.ErrEmptyEntry))
		Expect(subject.Append([]byte{})).To(MatchError(m3table.ErrEmptyEntry))
		Expect(subject.NumSlots()).To(Equal(0))
	})

	It("should reject too many entries", func() {
		for i := 0; i < m3table.MaxEntries; i++ {
			Expect(subject.AppendAbsent()).To(Succeed())
		}
		Expect(subject.AppendAbsent()).To(MatchError(m3table.ErrTooManyEntries))
		Expect(subject.Append([]byte("x"))).To(MatchError(m3table.ErrTooManyEntries))
	})

	It("should prevent use after close", func() {
		Expect(subject.Close()).To(Succeed())
		Expect(subject.Append([]byte("x"))).To(MatchError(`m3table: is closed`))
		Expect(subject.AppendAbsent()).To(MatchError(`m3table: is closed`))
		Expect(subject.Close()).To(MatchError(`m3table: is closed`))
	})

	It("should copy payloads", func() {
		val := []byte("abc")
		Expect(subject.Append(val)).To(Succeed())
		val[0] = 'x'
		Expect(subject.Close()).To(Succeed())
		Expect(buf.String()).To(HaveSuffix("abc"))
	})
})

var _ = Describe("checkSize", func() {
	It("should accept tables up to 4GiB", func() {
		Expect(m3table.CheckSize(0, 0)).To(Equal(uint32(8)))
		Expect(m3table.CheckSize(3, 5)).To(Equal(uint32(25)))
		Expect(m3table.CheckSize(0, math.MaxUint32-8)).To(Equal(uint32(math.MaxUint32)))
		Expect(m3table.CheckSize(m3table.MaxEntries, math.MaxUint32-4-4*(m3table.MaxEntries+1))).To(Equal(uint32(math.MaxUint32)))
	})

	It("should reject tables over 4GiB", func() {
		_, err := m3table.CheckSize(0, math.MaxUint32-7)
		Expect(err).To(MatchError(m3table.ErrTooLarge))
		Expect(err).To(MatchError(ContainSubstring("4294967296 bytes")))

		_, err = m3table.CheckSize(m3table.MaxEntries, math.MaxUint32-4*(m3table.MaxEntries+1))
		Expect(err).To(MatchError(m3table.ErrTooLarge))

		_, err = m3table.CheckSize(1, math.MaxUint64-20)
		Expect(err).To(MatchError(m3table.ErrTooLarge))
	})
})

var _ = Describe("Encode", func() {
	It("should round-trip through the reader", func() {
		payloads := [][]byte{nil, []byte("foo"), nil, nil, []byte("barbaz"), nil}
		table, err := m3table.Encode(payloads)
		Expect(err).NotTo(HaveOccurred())

		r, err := m3table.NewReader(table)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.NumSlots()).To(Equal(len(payloads)))

		slots, err := r.Slots()
		Expect(err).NotTo(HaveOccurred())
		for i, s := range slots {
			Expect(s.Index).To(Equal(i))
			Expect(s.Data).To(Equal(payloads[i]), "for %d", i)
		}
	})

	It("should fail on empty payloads", func() {
		_, err := m3table.Encode([][]byte{[]byte("a"), {}})
		Expect(err).To(MatchError(m3table.ErrEmptyEntry))
		Expect(err).To(MatchError(ContainSubstring("slot 1")))
	})
})
