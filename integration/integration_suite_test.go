// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package integration_test

import (
	"bufio"
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ninibe/streamrelay"
	"github.com/ninibe/streamrelay/broker"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Integration Suite")
}

var (
	rootBroker *streamrelay.Broker
	admin      *broker.Acceptor
	pub        *broker.Acceptor
	sub        *broker.Acceptor
)

var _ = BeforeSuite(func() {
	var err error
	rootBroker, err = streamrelay.NewBroker(GinkgoT().TempDir())
	Expect(err).ToNot(HaveOccurred())

	admin = broker.NewAcceptor("admin", broker.NewAdmin(rootBroker, 3, 4))
	pub = broker.NewAcceptor("publisher", broker.NewPublisher(rootBroker, 50*time.Millisecond))
	sub = broker.NewAcceptor("subscriber", broker.NewSubscriber(rootBroker, 20*time.Millisecond))

	go admin.ListenAndServe("127.0.0.1:0")
	go pub.ListenAndServe("127.0.0.1:0")
	go sub.ListenAndServe("127.0.0.1:0")

	Eventually(admin.Addr).ShouldNot(BeNil())
	Eventually(pub.Addr).ShouldNot(BeNil())
	Eventually(sub.Addr).ShouldNot(BeNil())
})

var _ = AfterSuite(func() {
	admin.Stop()
	pub.Stop()
	sub.Stop()
})

// sespClient is a thin synchronous client over a raw SESP connection,
// used by the specs to drive the broker the way a real producer or
// consumer would (mirroring netlog's integration/ use of a plain
// http.Client against the broker's transport).
type sespClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dial(addr net.Addr) *sespClient {
	conn, err := net.Dial("tcp", addr.String())
	Expect(err).ToNot(HaveOccurred())
	return &sespClient{conn: conn, r: bufio.NewReader(conn)}
}

func (c *sespClient) send(line string) string {
	_, err := c.conn.Write([]byte(line))
	Expect(err).ToNot(HaveOccurred())
	resp, err := c.r.ReadString('\n')
	Expect(err).ToNot(HaveOccurred())
	return resp
}

func (c *sespClient) close() {
	Expect(c.conn.Close()).To(Succeed())
}
