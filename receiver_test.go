package signalrx

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/reactivex/rxgo/v2"
)

var _ = Describe("Receiver", func() {
	It("should deliver notifications as Invocation items", func(done Done) {
		r := &chatterReceiver{}
		ch := r.On("OnWhisper").Observe()
		Eventually(func() int { return subscriptions(&r.Receiver, "OnWhisper") }).Should(Equal(1))
		r.OnWhisper("psst")
		item := <-ch
		Expect(item.E).NotTo(HaveOccurred())
		invocation := item.V.(Invocation)
		Expect(invocation.Target).To(Equal("OnWhisper"))
		Expect(invocation.Arguments).To(Equal([]interface{}{"psst"}))
		close(done)
	}, 1.0)
	It("should keep the argument order", func(done Done) {
		r := &Receiver{}
		ch := r.On("Mixed").Observe()
		Eventually(func() int { return subscriptions(r, "Mixed") }).Should(Equal(1))
		r.Notify("Mixed", 1, "two", 3.5)
		item := <-ch
		Expect(item.V.(Invocation).Arguments).To(Equal([]interface{}{1, "two", 3.5}))
		close(done)
	}, 1.0)
	It("should match the target case insensitively", func(done Done) {
		r := &chatterReceiver{}
		ch := r.On("onwhisper").Observe()
		Eventually(func() int { return subscriptions(&r.Receiver, "OnWhisper") }).Should(Equal(1))
		r.OnWhisper("hi")
		item := <-ch
		Expect(item.V.(Invocation).Target).To(Equal("OnWhisper"))
		close(done)
	}, 1.0)
	It("should fan out one notification to every subscription", func(done Done) {
		r := &Receiver{}
		first := r.On("Ping").Observe()
		second := r.On("Ping").Observe()
		Eventually(func() int { return subscriptions(r, "Ping") }).Should(Equal(2))
		r.Notify("Ping")
		Expect((<-first).V.(Invocation).Target).To(Equal("Ping"))
		Expect((<-second).V.(Invocation).Target).To(Equal("Ping"))
		close(done)
	}, 1.0)
	It("should remove the registration when the subscription is canceled", func(done Done) {
		r := &Receiver{}
		ctx, cancel := context.WithCancel(context.Background())
		ch := r.On("Gone").Observe(rxgo.WithContext(ctx))
		Eventually(func() int { return subscriptions(r, "Gone") }).Should(Equal(1))
		cancel()
		Eventually(func() int { return subscriptions(r, "Gone") }).Should(BeZero())
		for range ch {
		}
		// no subscription left, the notification is dropped
		r.Notify("Gone", "unheard")
		close(done)
	}, 1.0)
	It("should complete open subscriptions when the receiver is closed", func(done Done) {
		r := &Receiver{}
		ch := r.On("Closing").Observe()
		Eventually(func() int { return subscriptions(r, "Closing") }).Should(Equal(1))
		r.Close()
		for item := range ch {
			Expect(item.E).NotTo(HaveOccurred())
		}
		close(done)
	}, 1.0)
	It("should emit ErrReceiverClosed when subscribing on a closed receiver", func(done Done) {
		r := &Receiver{}
		r.Close()
		_, err := collectItems(r.On("Late"))
		Expect(err).To(MatchError(ErrReceiverClosed))
		close(done)
	}, 1.0)
	It("should drop notifications on a closed receiver", func(done Done) {
		r := &Receiver{}
		r.Close()
		r.Notify("Void", 1)
		close(done)
	}, 1.0)
})
