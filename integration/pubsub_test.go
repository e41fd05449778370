// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package integration_test

import (
	"time"

	"github.com/comail/go-uuid/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Publish and Subscribe", func() {
	var (
		adminClient   *sespClient
		publishClient *sespClient
		consumeClient *sespClient
		topicName     string
	)

	BeforeEach(func() {
		topicName = uuid.New()

		adminClient = dial(admin.Addr())
		Expect(adminClient.send("#" + topicName + "\n")).To(Equal("+ok\n"))

		publishClient = dial(pub.Addr())
		Expect(publishClient.send("@" + topicName + "\n")).To(Equal("+ok\n"))

		consumeClient = dial(sub.Addr())
		Expect(consumeClient.send("@" + topicName + "\n")).To(Equal("+ok\n"))
	})

	AfterEach(func() {
		adminClient.close()
		publishClient.close()
		consumeClient.close()
	})

	It("delivers a published message to a subscriber that reads from offset 0", func() {
		Expect(publishClient.send(">hello\n")).To(Equal("+hello\n"))

		Eventually(func() string {
			return consumeClient.send("<\n")
		}, time.Second, 10*time.Millisecond).Should(Equal("+hello\n"))
	})

	It("refuses a read past the published watermark", func() {
		resp := consumeClient.send("<\n")
		Expect(resp).To(HavePrefix("-"))
	})

	It("replays from a seeked offset", func() {
		Expect(publishClient.send(">m0\n")).To(Equal("+m0\n"))
		Expect(publishClient.send(">m1\n")).To(Equal("+m1\n"))
		Expect(publishClient.send(">m2\n")).To(Equal("+m2\n"))

		Eventually(func() string {
			consumeClient.send("$2\n")
			return consumeClient.send("<\n")
		}, time.Second, 10*time.Millisecond).Should(Equal("+m2\n"))
	})
})
