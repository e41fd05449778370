// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package integration_test

import (
	"github.com/comail/go-uuid/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Create Topic", func() {
	var (
		client    *sespClient
		topicName string
	)

	BeforeEach(func() {
		client = dial(admin.Addr())
		topicName = uuid.New()
	})

	AfterEach(func() {
		client.close()
	})

	Context("when the topic does not exist", func() {
		It("responds positively", func() {
			Expect(client.send("#" + topicName + "\n")).To(Equal("+ok\n"))
		})
	})

	Context("when the topic already exists with the same parameters", func() {
		It("is a no-op", func() {
			Expect(client.send("#" + topicName + "\n")).To(Equal("+ok\n"))
			Expect(client.send("#" + topicName + "\n")).To(Equal("+ok\n"))
		})
	})

	Context("when deleting a topic that does not exist", func() {
		It("responds negatively", func() {
			resp := client.send("!" + topicName + "\n")
			Expect(resp).To(HavePrefix("-"))
		})
	})

	Context("when deleting an existing topic", func() {
		It("responds positively and the topic no longer exists", func() {
			Expect(client.send("#" + topicName + "\n")).To(Equal("+ok\n"))
			Expect(client.send("!" + topicName + "\n")).To(Equal("+ok\n"))
			Expect(client.send("!" + topicName + "\n")).To(HavePrefix("-"))
		})
	})
})
