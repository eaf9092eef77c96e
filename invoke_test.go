package signalrx

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/reactivex/rxgo/v2"
)

var _ = Describe("Invoke", func() {
	It("should invoke the server method and emit the single result", func(done Done) {
		bed := getTestBed()
		values, err := collectItems(Invoke(bed.client, "Shout", "hello"))
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]interface{}{"HELLO!"}))
		bed.cancel()
		close(done)
	}, 2.0)
	It("should emit the result exactly once per invocation", func(done Done) {
		bed := getTestBed()
		// the wrapped client delivers the value and a success marker on the
		// same channel in no guaranteed order, the result must stay a single
		// emission in every ordering
		for i := 0; i < 20; i++ {
			values, err := collectItems(Invoke(bed.client, "Shout", "once"))
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]interface{}{"ONCE!"}))
		}
		bed.cancel()
		close(done)
	}, 5.0)
	It("should complete without emission when the method returns no value", func(done Done) {
		bed := getTestBed()
		values, err := collectItems(Invoke(bed.client, "Whisper", "void"))
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(BeEmpty())
		bed.cancel()
		close(done)
	}, 2.0)
	It("should emit the error when the arguments don't match", func(done Done) {
		bed := getTestBed()
		values, err := collectItems(Invoke(bed.client, "Shout", 1, 2))
		Expect(err).To(HaveOccurred())
		Expect(values).To(BeEmpty())
		bed.cancel()
		close(done)
	}, 2.0)
	It("should invoke once per subscription", func(done Done) {
		bed := getTestBed()
		obs := Invoke(bed.client, "Shout", "again")
		for i := 0; i < 2; i++ {
			_, err := collectItems(obs)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(atomic.LoadInt32(&bed.hub.invocations)).To(BeEquivalentTo(2))
		bed.cancel()
		close(done)
	}, 2.0)
	It("should not invoke without a subscription", func(done Done) {
		bed := getTestBed()
		Invoke(bed.client, "Shout", "quiet")
		time.Sleep(100 * time.Millisecond)
		Expect(atomic.LoadInt32(&bed.hub.invocations)).To(BeZero())
		bed.cancel()
		close(done)
	}, 2.0)
	It("should complete without emission when the subscription is canceled", func(done Done) {
		bed := getTestBed()
		ctx, cancel := context.WithCancel(context.Background())
		ch := Invoke(bed.client, "Dawdle", 500).Observe(rxgo.WithContext(ctx))
		time.AfterFunc(50*time.Millisecond, cancel)
		count := 0
		for range ch {
			count++
		}
		Expect(count).To(BeZero())
		bed.cancel()
		close(done)
	}, 2.0)
	It("should complete without result when the client goes away", func(done Done) {
		bed := getTestBed()
		ch := Invoke(bed.client, "Dawdle", 500).Observe()
		time.AfterFunc(50*time.Millisecond, bed.cancel)
		count := 0
		for item := range ch {
			if item.E == nil {
				count++
			}
		}
		Expect(count).To(BeZero())
		close(done)
	}, 2.0)
	It("should emit the error when the connection fails", func(done Done) {
		bed := getTestBed()
		bed.cliConn.fail.Store(errors.New("fail"))
		_, err := collectItems(Invoke(bed.client, "Shout", "x"))
		Expect(err).To(HaveOccurred())
		bed.cancel()
		close(done)
	}, 2.0)
	It("should emit ErrNilClient for a nil client", func(done Done) {
		_, err := collectItems(Invoke(nil, "Shout", "x"))
		Expect(err).To(MatchError(ErrNilClient))
		close(done)
	}, 1.0)
})

var _ = Describe("Send", func() {
	It("should complete and deliver the callback to the receiver", func(done Done) {
		bed := getTestBed()
		callbacks := bed.receiver.On("OnWhisper").Observe()
		Eventually(func() int { return subscriptions(&bed.receiver.Receiver, "OnWhisper") }).Should(Equal(1))
		values, err := collectItems(Send(bed.client, "Whisper", "LOUD"))
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(BeEmpty())
		item := <-callbacks
		Expect(item.E).NotTo(HaveOccurred())
		invocation := item.V.(Invocation)
		Expect(invocation.Target).To(Equal("OnWhisper"))
		Expect(invocation.Arguments).To(Equal([]interface{}{"loud"}))
		bed.cancel()
		close(done)
	}, 2.0)
	It("should emit the error when the arguments don't match", func(done Done) {
		bed := getTestBed()
		_, err := collectItems(Send(bed.client, "Whisper", 1, 2))
		Expect(err).To(HaveOccurred())
		bed.cancel()
		close(done)
	}, 2.0)
	It("should emit the error when the connection fails", func(done Done) {
		bed := getTestBed()
		bed.cliConn.fail.Store(errors.New("fail"))
		_, err := collectItems(Send(bed.client, "Whisper", "x"))
		Expect(err).To(HaveOccurred())
		bed.cancel()
		close(done)
	}, 2.0)
	It("should emit ErrNilClient for a nil client", func(done Done) {
		_, err := collectItems(Send(nil, "Whisper", "x"))
		Expect(err).To(MatchError(ErrNilClient))
		close(done)
	}, 1.0)
})
