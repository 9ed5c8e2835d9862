package blockchain_listener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ferreirogomes/assetledger/services"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws" // Para WebSockets
	"github.com/sirupsen/logrus"
)

// BlockchainListener espelha no ledger as transações finalizadas do programa de tokenização.
type BlockchainListener struct {
	RPCClient *rpc.Client
	WSURL     string
	ProgramID solana.PublicKey
	// Ledger recebe as instruções já aceitas on-chain; deve ser montado com
	// services.NewMirrorGateway para não aplicar a Policy do serviço HTTP.
	Ledger services.Ledger
	Log       logrus.FieldLogger

	// ReconnectDelay é a espera entre tentativas de reconexão do WebSocket.
	ReconnectDelay time.Duration

	// seen vive só em memória: após um reinício, transações reentregues pela rede são reaplicadas.
	mu   sync.Mutex
	seen map[solana.Signature]struct{}
}

// NewBlockchainListener cria uma nova instância do listener.
func NewBlockchainListener(rpcEndpoint, wsEndpoint string, programID solana.PublicKey, ledger services.Ledger) *BlockchainListener {
	return &BlockchainListener{
		RPCClient:      rpc.New(rpcEndpoint),
		WSURL:          wsEndpoint,
		ProgramID:      programID,
		Ledger:         ledger,
		Log:            logrus.StandardLogger(),
		ReconnectDelay: 5 * time.Second,
		seen:           make(map[solana.Signature]struct{}),
	}
}

// StartListening escuta os logs do programa até ctx ser cancelado, reconectando em caso de falha.
func (l *BlockchainListener) StartListening(ctx context.Context) error {
	l.Log.Infof("Iniciando listener da blockchain para o programa %s...", l.ProgramID)
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.Log.Errorf("Listener da blockchain interrompido: %v. Reconectando em %s", err, l.ReconnectDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.ReconnectDelay):
		}
	}
}

func (l *BlockchainListener) listen(ctx context.Context) error {
	wsClient, err := ws.Connect(ctx, l.WSURL)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao WebSocket Solana: %w", err)
	}
	defer wsClient.Close()

	sub, err := wsClient.LogsSubscribeMentions(l.ProgramID, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("falha ao subscrever aos logs do programa: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			return fmt.Errorf("erro ao receber logs: %w", err)
		}
		if got.Value.Err != nil {
			// Transações que falharam on-chain não alteram estado
			l.Log.Debugf("Transação %s falhou on-chain: %v", got.Value.Signature, got.Value.Err)
			continue
		}
		if err := l.ProcessTransaction(ctx, got.Value.Signature); err != nil {
			l.Log.Errorf("Falha ao processar transação %s: %v", got.Value.Signature, err)
		}
	}
}

// ProcessTransaction busca os detalhes de uma transação e a aplica ao ledger.
func (l *BlockchainListener) ProcessTransaction(ctx context.Context, signature solana.Signature) error {
	maxVersion := uint64(0)
	txResp, err := l.RPCClient.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return fmt.Errorf("falha ao obter detalhes da transação: %w", err)
	}
	if txResp == nil || txResp.Transaction == nil {
		return fmt.Errorf("detalhes da transação vazios")
	}
	if txResp.Meta != nil && txResp.Meta.Err != nil {
		return nil
	}

	tx, err := txResp.Transaction.GetTransaction()
	if err != nil {
		return fmt.Errorf("falha ao decodificar transação: %w", err)
	}
	return l.ApplyTransaction(ctx, signature, tx)
}

// markSeen retorna false se a assinatura já foi aplicada.
func (l *BlockchainListener) markSeen(signature solana.Signature) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = make(map[solana.Signature]struct{})
	}
	if _, ok := l.seen[signature]; ok {
		return false
	}
	l.seen[signature] = struct{}{}
	return true
}

// ApplyTransaction aplica ao ledger, em ordem, as instruções do programa contidas em tx.
// Instruções de outros programas são ignoradas. Uma transação finalizada já passou por todas as
// verificações on-chain, então uma rejeição do ledger indica divergência: as instruções seguintes
// não são aplicadas e o erro é retornado.
func (l *BlockchainListener) ApplyTransaction(ctx context.Context, signature solana.Signature, tx *solana.Transaction) error {
	if !l.markSeen(signature) {
		l.Log.Debugf("Transação %s já aplicada, ignorando.", signature)
		return nil
	}

	keys := tx.Message.AccountKeys
	if len(keys) == 0 {
		return fmt.Errorf("transação %s sem contas", signature)
	}
	feePayer := keys[0]

	for i, cix := range tx.Message.Instructions {
		if int(cix.ProgramIDIndex) >= len(keys) || !keys[cix.ProgramIDIndex].Equals(l.ProgramID) {
			continue
		}

		accounts := make([]solana.PublicKey, 0, len(cix.Accounts))
		for _, idx := range cix.Accounts {
			if int(idx) >= len(keys) {
				// Contas vindas de tabelas de endereços não são resolvidas aqui
				return fmt.Errorf("instrução %d: índice de conta %d fora das chaves estáticas", i, idx)
			}
			accounts = append(accounts, keys[idx])
		}

		ix, err := DecodeInstruction(accounts, cix.Data)
		if err != nil {
			l.Log.Warnf("Instrução %d da transação %s não decodificada: %v", i, signature, err)
			continue
		}
		if err := l.apply(ctx, signature, feePayer, ix); err != nil {
			l.Log.WithFields(logrus.Fields{
				"signature":   signature.String(),
				"instruction": ix.Kind,
			}).Errorf("Ledger divergiu da blockchain: %v", err)
			return fmt.Errorf("instrução %d (%s): %w", i, ix.Kind, err)
		}
	}
	return nil
}

func (l *BlockchainListener) apply(ctx context.Context, signature solana.Signature, feePayer solana.PublicKey, ix Instruction) error {
	signer := ix.Signer
	if signer.IsZero() {
		// mint_fraction_tokens não declara assinante; quem pagou a transação responde por ela
		signer = feePayer
	}
	caller := services.Caller{Key: signer, Signature: signature.String()}

	if ix.Kind == InstructionCreateAsset {
		_, err := l.Ledger.CreateAsset(ctx, ix.AssetID, ix.MetadataURI, ix.TotalSupply, caller)
		return err
	}

	asset, err := l.Ledger.GetAssetByAddress(ctx, ix.AssetAddress.String())
	if err != nil {
		return err
	}

	switch ix.Kind {
	case InstructionMintFraction:
		_, err = l.Ledger.MintFractionTokens(ctx, asset.ID, ix.Amount, caller)
	case InstructionBuyFractions:
		_, err = l.Ledger.BuyFractions(ctx, asset.ID, ix.Amount, caller)
	case InstructionDistributeRevenue:
		_, err = l.Ledger.DistributeRevenue(ctx, asset.ID, ix.Amount, caller)
	default:
		err = fmt.Errorf("instrução não tratada: %s", ix.Kind)
	}
	return err
}
