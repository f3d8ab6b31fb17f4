// Package rpc implements a minimal JSON-RPC 2.0 server over the
// chain: the wire surface wallets and explorers talk to.
package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/block"
	"github.com/ardanlabs/gambit/foundation/blockchain/chain"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
)

// Miner is the subset of the miner package the RPC surface drives.
type Miner interface {
	Start()
	Stop()
	SetInterval(ms uint64)
	GetWork() block.Block
	SubmitWork(b block.Block) bool
}

// Server is a JSON-RPC 2.0 server, one goroutine per accepted
// connection, matching the accept-loop shape the wire protocol was
// originally built around.
type Server struct {
	chain    *chain.Blockchain
	miner    Miner
	listener net.Listener
}

// New constructs a Server bound to bc and, optionally, a miner for
// the miner_*/eth_getWork/eth_submitWork extension methods.
func New(bc *chain.Blockchain, miner Miner) *Server {
	return &Server{chain: bc, miner: miner}
}

// Listen starts accepting connections on addr.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.acceptLoop()
	return nil
}

// Addr returns the listener's bound address. Only valid after Listen.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Stop closes the listener.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  []string        `json:"params"`
}

// txJSON is the JSON-object shape of a transaction returned by the
// eth_getBlockByNumber/eth_getBlockByHash/eth_getTransactionByHash
// methods, mirroring explorer.go's handleBlock field naming.
type txJSON struct {
	Hash     string `json:"hash"`
	From     string `json:"from"`
	To       string `json:"to"`
	Nonce    uint64 `json:"nonce"`
	Value    uint64 `json:"value"`
	GasPrice uint64 `json:"gasPrice"`
	GasLimit uint64 `json:"gasLimit"`
}

func newTxJSON(tx transaction.Transaction) txJSON {
	return txJSON{
		Hash:     tx.Hash,
		From:     tx.From.String(),
		To:       tx.To.String(),
		Nonce:    tx.Nonce,
		Value:    tx.Value,
		GasPrice: tx.GasPrice,
		GasLimit: tx.GasLimit,
	}
}

// blockJSON is the JSON-object shape of a block. When verbose is
// false, Transactions holds each transaction's hash only; when true
// (the eth_getBlockByNumber "full transaction objects" flag) it holds
// full txJSON objects.
type blockJSON struct {
	Index        uint64 `json:"index"`
	Hash         string `json:"hash"`
	PrevHash     string `json:"prevHash"`
	StateRoot    string `json:"stateRoot"`
	TxRoot       string `json:"txRoot"`
	ReceiptsRoot string `json:"receiptsRoot"`
	Timestamp    uint64 `json:"timestamp"`
	TxCount      int    `json:"txCount"`
	Transactions any    `json:"transactions"`
}

func newBlockJSON(b block.Block, verbose bool) blockJSON {
	var txs any
	if verbose {
		full := make([]txJSON, len(b.Transactions))
		for i, tx := range b.Transactions {
			full[i] = newTxJSON(tx)
		}
		txs = full
	} else {
		hashes := make([]string, len(b.Transactions))
		for i, tx := range b.Transactions {
			hashes[i] = tx.Hash
		}
		txs = hashes
	}

	return blockJSON{
		Index:        b.Index,
		Hash:         b.Hash,
		PrevHash:     b.PrevHash,
		StateRoot:    b.StateAfter,
		TxRoot:       b.TxRoot,
		ReceiptsRoot: b.ReceiptsRoot,
		Timestamp:    b.Timestamp,
		TxCount:      len(b.Transactions),
		Transactions: txs,
	}
}

// verboseFlag reports whether the request's verbose_flag parameter
// (conventionally the method's second parameter, "true"/"false") asks
// for full transaction objects rather than bare hashes.
func verboseFlag(s string) bool {
	return s == "true"
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		writeHTTP(conn, response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "Parse error"}})
		return
	}
	defer req.Body.Close()

	var rpcReq request
	if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
		writeHTTP(conn, response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "Parse error"}})
		return
	}

	resp := s.dispatch(rpcReq)
	writeHTTP(conn, resp)
}

func writeHTTP(conn net.Conn, resp response) {
	resp.JSONRPC = "2.0"
	body, _ := json.Marshal(resp)

	fmt.Fprintf(conn, "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\nConnection: close\r\n\r\n", len(body))
	conn.Write(body)
}

func result(id json.RawMessage, v any) response {
	return response{ID: id, Result: v}
}

func errResp(id json.RawMessage, code int, msg string) response {
	return response{ID: id, Error: &rpcError{Code: code, Message: msg}}
}

func (s *Server) dispatch(req request) response {
	param := func(i int) string {
		if i < len(req.Params) {
			return req.Params[i]
		}
		return ""
	}

	switch req.Method {
	case "eth_blockNumber":
		return result(req.ID, fmt.Sprintf("0x%x", s.chain.Height()))

	case "eth_chainId", "net_version":
		// net_version always mirrors the configured chain id: the
		// original conflates it with genesis detection and returns
		// the wrong value for any chain but the first ever launched.
		return result(req.ID, strconv.FormatUint(s.chain.ChainID(), 10))

	case "eth_getBalance":
		addr, err := address.FromHex(param(0))
		if err != nil {
			return errResp(req.ID, -32602, "Invalid address")
		}
		return result(req.ID, fmt.Sprintf("0x%x", s.chain.Account(addr).Balance))

	case "eth_getTransactionCount":
		addr, err := address.FromHex(param(0))
		if err != nil {
			return errResp(req.ID, -32602, "Invalid address")
		}
		return result(req.ID, fmt.Sprintf("0x%x", s.chain.Account(addr).Nonce))

	case "eth_sendRawTransaction":
		tx, err := transaction.FromHex(param(0))
		if err != nil {
			return errResp(req.ID, -32602, err.Error())
		}
		if err := s.chain.AddTransaction(tx); err != nil {
			return errResp(req.ID, -32000, err.Error())
		}
		return result(req.ID, tx.Hash)

	case "eth_getBlockByNumber":
		num, err := strconv.ParseUint(strings.TrimPrefix(param(0), "0x"), 16, 64)
		if err != nil {
			return errResp(req.ID, -32602, "Invalid block number")
		}
		b, ok := s.chain.Block(num)
		if !ok {
			return result(req.ID, nil)
		}
		return result(req.ID, newBlockJSON(b, verboseFlag(param(1))))

	case "eth_getBlockByHash":
		b, ok := s.chain.BlockByHash(param(0))
		if !ok {
			return result(req.ID, nil)
		}
		return result(req.ID, newBlockJSON(b, verboseFlag(param(1))))

	case "eth_getTransactionByHash":
		tx, ok := s.chain.TransactionByHash(param(0))
		if !ok {
			return result(req.ID, nil)
		}
		return result(req.ID, newTxJSON(tx))

	case "miner_start":
		if s.miner == nil {
			return errResp(req.ID, -32601, "Method not found")
		}
		s.miner.Start()
		return result(req.ID, "ok")

	case "miner_stop":
		if s.miner == nil {
			return errResp(req.ID, -32601, "Method not found")
		}
		s.miner.Stop()
		return result(req.ID, "ok")

	case "miner_setInterval":
		if s.miner == nil {
			return errResp(req.ID, -32601, "Method not found")
		}
		ms, err := strconv.ParseUint(param(0), 10, 64)
		if err != nil {
			return errResp(req.ID, -32602, "Invalid interval")
		}
		s.miner.SetInterval(ms)
		return result(req.ID, "ok")

	case "eth_getWork":
		if s.miner == nil {
			return errResp(req.ID, -32601, "Method not found")
		}
		return result(req.ID, s.miner.GetWork().ToHex())

	case "eth_submitWork":
		if s.miner == nil {
			return errResp(req.ID, -32601, "Method not found")
		}
		b, err := block.FromHex(param(0))
		if err != nil {
			return errResp(req.ID, -32602, err.Error())
		}
		if !s.miner.SubmitWork(b) {
			return result(req.ID, "invalid")
		}
		return result(req.ID, "ok")

	default:
		return errResp(req.ID, -32601, "Method not found")
	}
}
